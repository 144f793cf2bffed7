// Package types owns the coarse Cypher type lattice and value classification.
//
// Ownership boundary:
// - type constructor tags
// - process-wide coarse type singletons
// - classification of values into the lattice
package types
