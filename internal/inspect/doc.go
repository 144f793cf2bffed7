// Package inspect turns loosely typed descriptions (JSON bodies, CLI flags)
// into bolt messages and values, and reports what the codec produced for
// them. The HTTP server and the CLI share it.
package inspect
