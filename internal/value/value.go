// Package value models the application values exchanged with the server.
package value

import "github.com/danmuck/boltwire/internal/types"

// Value is a tagged union; exactly one concrete type below is held.
type Value interface {
	types.Typed
	isValue()
}

type (
	// Null is the absent value.
	Null struct{}
	Bool bool
	String string
	Integer int64
	Float float64
	List []Value
	Map map[string]Value
	// Identity is the server-assigned id of a node or relationship.
	Identity int64
)

// Node is a graph vertex as returned by the server.
type Node struct {
	ID     Identity
	Labels []string
	Props  map[string]Value
}

// Relationship is a directed, typed edge between two nodes.
type Relationship struct {
	ID      Identity
	StartID Identity
	EndID   Identity
	Type    string
	Props   map[string]Value
}

// Path alternates nodes and relationships; len(Nodes) == len(Relationships)+1
// for a non-empty path.
type Path struct {
	Nodes         []Node
	Relationships []Relationship
}

func (Null) TypeConstructor() types.Constructor         { return types.NullTyCon }
func (Bool) TypeConstructor() types.Constructor         { return types.BooleanTyCon }
func (String) TypeConstructor() types.Constructor       { return types.StringTyCon }
func (Integer) TypeConstructor() types.Constructor      { return types.IntegerTyCon }
func (Float) TypeConstructor() types.Constructor        { return types.FloatTyCon }
func (List) TypeConstructor() types.Constructor         { return types.ListTyCon }
func (Map) TypeConstructor() types.Constructor          { return types.MapTyCon }
func (Identity) TypeConstructor() types.Constructor     { return types.IdentityTyCon }
func (Node) TypeConstructor() types.Constructor         { return types.NodeTyCon }
func (Relationship) TypeConstructor() types.Constructor { return types.RelationshipTyCon }
func (Path) TypeConstructor() types.Constructor         { return types.PathTyCon }

func (Null) isValue()         {}
func (Bool) isValue()         {}
func (String) isValue()       {}
func (Integer) isValue()      {}
func (Float) isValue()        {}
func (List) isValue()         {}
func (Map) isValue()          {}
func (Identity) isValue()     {}
func (Node) isValue()         {}
func (Relationship) isValue() {}
func (Path) isValue()         {}
