// Package session owns the single-writer path from bolt messages to a stream.
//
// Ownership boundary:
// - version gating against the negotiated protocol
// - staging, chunking and one-write delivery of messages and pipelines
// - write deadlines, encode metrics and logging
//
// Decoding responses, pooling and retries live outside this package.
package session
