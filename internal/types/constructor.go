package types

import "strconv"

// Constructor is the wire-level type tag carried by every value.
type Constructor uint8

const (
	AnyTyCon Constructor = iota
	BooleanTyCon
	StringTyCon
	NumberTyCon
	IntegerTyCon
	FloatTyCon
	ListTyCon
	MapTyCon
	IdentityTyCon
	NodeTyCon
	RelationshipTyCon
	PathTyCon
	NullTyCon

	constructorCount
)

var constructorNames = [...]string{
	AnyTyCon:          "ANY",
	BooleanTyCon:      "BOOLEAN",
	StringTyCon:       "STRING",
	NumberTyCon:       "NUMBER",
	IntegerTyCon:      "INTEGER",
	FloatTyCon:        "FLOAT",
	ListTyCon:         "LIST",
	MapTyCon:          "MAP",
	IdentityTyCon:     "IDENTITY",
	NodeTyCon:         "NODE",
	RelationshipTyCon: "RELATIONSHIP",
	PathTyCon:         "PATH",
	NullTyCon:         "NULL",
}

// Known reports whether c is a member of the closed constructor set.
func (c Constructor) Known() bool {
	return c < constructorCount
}

func (c Constructor) String() string {
	if !c.Known() {
		return "Constructor(" + strconv.Itoa(int(c)) + ")"
	}
	return constructorNames[c]
}
