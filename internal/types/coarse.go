package types

// CoarseCypherType is one member of the coarse type lattice. Instances are the
// package-level singletons below; compare them by pointer.
type CoarseCypherType struct {
	constructor Constructor
}

var (
	Any          = &CoarseCypherType{constructor: AnyTyCon}
	Boolean      = &CoarseCypherType{constructor: BooleanTyCon}
	String       = &CoarseCypherType{constructor: StringTyCon}
	Number       = &CoarseCypherType{constructor: NumberTyCon}
	Integer      = &CoarseCypherType{constructor: IntegerTyCon}
	Float        = &CoarseCypherType{constructor: FloatTyCon}
	List         = &CoarseCypherType{constructor: ListTyCon}
	Map          = &CoarseCypherType{constructor: MapTyCon}
	Identity     = &CoarseCypherType{constructor: IdentityTyCon}
	Node         = &CoarseCypherType{constructor: NodeTyCon}
	Relationship = &CoarseCypherType{constructor: RelationshipTyCon}
	Path         = &CoarseCypherType{constructor: PathTyCon}
	Null         = &CoarseCypherType{constructor: NullTyCon}
)

// coarseTypes is indexed by Constructor.
var coarseTypes = [...]*CoarseCypherType{
	AnyTyCon:          Any,
	BooleanTyCon:      Boolean,
	StringTyCon:       String,
	NumberTyCon:       Number,
	IntegerTyCon:      Integer,
	FloatTyCon:        Float,
	ListTyCon:         List,
	MapTyCon:          Map,
	IdentityTyCon:     Identity,
	NodeTyCon:         Node,
	RelationshipTyCon: Relationship,
	PathTyCon:         Path,
	NullTyCon:         Null,
}

// A constructor added without a singleton and a name breaks the build here.
func _() {
	var x [1]struct{}
	_ = x[len(coarseTypes)-int(constructorCount)]
	_ = x[len(constructorNames)-int(constructorCount)]
}

// Constructor returns the tag this type was built from.
func (t *CoarseCypherType) Constructor() Constructor {
	return t.constructor
}

// Name returns the Cypher name of the type, e.g. "INTEGER".
func (t *CoarseCypherType) Name() string {
	return t.constructor.String()
}

func (t *CoarseCypherType) String() string {
	return t.Name()
}

// Covers reports whether every value of type other is also a value of t.
// ANY covers everything and NUMBER covers INTEGER and FLOAT.
func (t *CoarseCypherType) Covers(other *CoarseCypherType) bool {
	if t == nil || other == nil {
		return false
	}
	if t == other || t == Any {
		return true
	}
	if t == Number {
		return other == Integer || other == Float
	}
	return false
}

// All returns every coarse type in constructor order.
func All() []*CoarseCypherType {
	out := make([]*CoarseCypherType, len(coarseTypes))
	copy(out, coarseTypes[:])
	return out
}

// ByName resolves a Cypher type name such as "FLOAT".
func ByName(name string) (*CoarseCypherType, bool) {
	for _, t := range coarseTypes {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}
