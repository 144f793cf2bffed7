// Package packstream owns the PackStream v1 binary writer.
//
// Ownership boundary:
// - marker byte table
// - canonical value encodings (append form)
// - Packer bound to an io.Writer
//
// Decoding is not provided here.
package packstream
