// Package parse holds the field decoders shared by the training-corpus builder and
// the inference builder. Every function here is total: malformed or absent input
// produces a documented "unknown" result, never an error or a panic.
package parse
