// Package log provides the structured logging abstraction used by offramp.
//
// The core logs through the [Logger] interface so embedding
// applications keep control of output. [NewZerologAdapter] wires the
// interface to zerolog console output; [NewNoopLogger] discards
// everything and is the library default.
package log
