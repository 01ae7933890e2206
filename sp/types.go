// Package sp provides a stream processor language for Go: lazy, possibly
// infinite streams, and processors built from two constructors, Get
// ("read one input, then decide") and Put ("write one output, then decide
// lazily what comes next").
//
// The same processor serves demand-driven code (ask the output stream for
// its next element, which reads as many inputs as needed) and event-driven
// code (feed arriving events through the processor and react to what it
// emits).
//
// This package is the primary user-facing API. The sp/core subpackage
// contains the underlying abstractions shared by all other packages.
package sp

import (
	"github.com/lguimbarda/min-sp/sp/core"
)

// Type aliases for core abstractions.
// These allow users to work with the language without importing core directly.
type (
	// Stream is a lazy, possibly infinite, persistent sequence of values.
	Stream[T any] = core.Stream[T]

	// Processor turns a stream of A into a stream of B.
	Processor[A, B any] = core.Processor[A, B]

	// Lazy is a memoized suspended computation.
	Lazy[T any] = core.Lazy[T]

	// Result carries a value or an in-band error.
	Result[T any] = core.Result[T]

	// Hooks observe the transitions of an evaluation.
	Hooks = core.Hooks

	// EvalOption configures Eval.
	EvalOption = core.EvalOption
)

// ErrExhausted is returned by Tail when a bounded stream runs out.
var ErrExhausted = core.ErrExhausted

// IsExhausted reports whether err signals stream exhaustion.
func IsExhausted(err error) bool {
	return core.IsExhausted(err)
}

// Processor constructors - wrappers around core functions.

// Get builds a processor that reads one input and continues with k(input).
func Get[A, B any](k func(A) Processor[A, B]) Processor[A, B] {
	return core.Get(k)
}

// Put builds a processor that emits b now and builds its continuation lazily.
func Put[A, B any](b B, next func() Processor[A, B]) Processor[A, B] {
	return core.Put(b, next)
}

// Emit emits b and continues with the already built sp.
func Emit[A, B any](b B, sp Processor[A, B]) Processor[A, B] {
	return core.Emit(b, sp)
}

// Map creates a Processor applying f to every input.
func Map[A, B any](f func(A) B) Processor[A, B] {
	return core.Map(f)
}

// Identity passes every input through unchanged.
func Identity[A any]() Processor[A, A] {
	return core.Identity[A]()
}

// Eval runs sp against in and returns the lazily computed output stream.
func Eval[A, B any](sp Processor[A, B], in Stream[A], opts ...EvalOption) (Stream[B], error) {
	return core.Eval(sp, in, opts...)
}

// WithHooks attaches observation hooks to an evaluation.
func WithHooks(hooks Hooks) EvalOption {
	return core.WithHooks(hooks)
}

// Suspend wraps f as a memoized suspended computation.
func Suspend[T any](f func() T) *Lazy[T] {
	return core.Suspend(f)
}
