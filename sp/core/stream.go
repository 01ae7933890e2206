// Package core defines the core abstractions of the stream processor
// language: lazy streams, the Get/Put processor automaton, the evaluator
// that runs a processor against a stream, and the channel adapters the
// concurrency runtime is built on.
//
// NOTE: this package should have no dependencies outside the standard
// library, including other sp packages.
package core

import (
	"errors"
)

// Stream is a lazy, possibly infinite sequence of values.
// Head answers "what is the next value?" without consuming it, and
// Tail answers "what comes after it?".
//
// Streams are persistent: calling Tail twice on the same stream yields
// the same successor, and any side effect performed to compute it happens
// only once. A stream is only ever advanced forward.
type Stream[T any] interface {
	Head() T
	Tail() (Stream[T], error)
}

// ErrExhausted is returned by Tail when a bounded stream has no element
// after its head. Adapters may wrap it; use IsExhausted to test for it.
var ErrExhausted = errors.New("stream exhausted")

// ErrMalformed is returned when evaluation reaches a zero Processor,
// which is neither awaiting input nor emitting output.
var ErrMalformed = errors.New("malformed stream processor")

// IsExhausted reports whether err signals stream exhaustion.
func IsExhausted(err error) bool {
	return errors.Is(err, ErrExhausted)
}
