package types

import "fmt"

// Typed is implemented by every value that carries a wire type tag.
type Typed interface {
	TypeConstructor() Constructor
}

// TypeOf returns the most specific coarse type of v. A nil v is NULL. Tags
// outside the known constructor set fail with ErrUnsupportedCypherType.
func TypeOf(v Typed) (*CoarseCypherType, error) {
	if v == nil {
		return Null, nil
	}
	c := v.TypeConstructor()
	if !c.Known() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCypherType, c)
	}
	return coarseTypes[c], nil
}
