// Package orchestrator wires the loader → decoder → decorator → compiler
// pipeline, providing dependency injection friendly helpers for consumers that
// prefer a single entry point.
package orchestrator
