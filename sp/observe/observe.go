// Package observe provides observability for stream processors: counters
// of evaluation transitions, a stream wrapper counting how much of a
// source is consumed, and adapters feeding the same events to slog,
// OpenTelemetry and Prometheus.
//
// Everything here is built on core.Hooks, so observers compose: pass as
// many EvalOptions to Eval as needed and they fire in order.
package observe

import (
	"sync"
	"sync/atomic"

	"github.com/lguimbarda/min-sp/sp/core"
)

// Transitions counts the transitions of one or more evaluations.
// It is safe for concurrent use, so it can observe parallel branches.
type Transitions struct {
	gets     atomic.Int64
	puts     atomic.Int64
	failures atomic.Int64
}

// Gets returns the number of input elements consumed.
func (t *Transitions) Gets() int64 { return t.gets.Load() }

// Puts returns the number of outputs produced.
func (t *Transitions) Puts() int64 { return t.puts.Load() }

// Failures returns the number of failed evaluation steps, exhaustion included.
func (t *Transitions) Failures() int64 { return t.failures.Load() }

// Hooks returns hooks updating the counters.
func (t *Transitions) Hooks() core.Hooks {
	return core.Hooks{
		OnGet:  func() { t.gets.Add(1) },
		OnPut:  func() { t.puts.Add(1) },
		OnFail: func(error) { t.failures.Add(1) },
	}
}

// CountTransitions returns a fresh counter and the option attaching it.
func CountTransitions() (*Transitions, core.EvalOption) {
	t := &Transitions{}
	return t, core.WithHooks(t.Hooks())
}

// Consumption counts the Head and Tail calls made on a wrapped stream.
type Consumption struct {
	heads atomic.Int64
	tails atomic.Int64
}

// Heads returns the number of Head calls.
func (c *Consumption) Heads() int64 { return c.heads.Load() }

// Tails returns the number of Tail calls that reached the source, which is
// the number of elements actually pulled from it after the first.
func (c *Consumption) Tails() int64 { return c.tails.Load() }

// Count wraps s so that every Head and Tail reaching it is counted. Tails
// are memoized per node: asking the same node twice for its tail counts
// once, as the source is only advanced once.
func Count[T any](s core.Stream[T]) (core.Stream[T], *Consumption) {
	c := &Consumption{}
	return &counted[T]{Stream: s, c: c}, c
}

type counted[T any] struct {
	core.Stream[T]
	c *Consumption

	once sync.Once
	tail core.Stream[T]
	err  error
}

func (s *counted[T]) Head() T {
	s.c.heads.Add(1)
	return s.Stream.Head()
}

func (s *counted[T]) Tail() (core.Stream[T], error) {
	s.once.Do(func() {
		s.c.tails.Add(1)
		next, err := s.Stream.Tail()
		if err != nil {
			s.err = err
			return
		}
		s.tail = &counted[T]{Stream: next, c: s.c}
	})
	return s.tail, s.err
}
