// Package message owns the outbound bolt messages and their encoders.
//
// Ownership boundary:
// - request message variants
// - bookmark and routing context collaborators
// - the encoder dispatch table (variant check, struct header, field order)
package message
