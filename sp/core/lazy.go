package core

import "sync"

// Lazy is a suspended computation of a T. The computation runs the first
// time Force is called and its value is kept, so forcing again returns the
// identical value. Lazy is safe for concurrent use. A computation must not
// force its own Lazy: the second Force waits for the first and never
// returns.
type Lazy[T any] struct {
	mu    sync.Mutex
	done  bool
	thunk func() T
	value T
}

// Suspend wraps f so it runs on the first Force.
func Suspend[T any](f func() T) *Lazy[T] {
	if f == nil {
		panic("core: nil thunk")
	}
	return &Lazy[T]{thunk: f}
}

// Ready returns an already forced Lazy holding v.
func Ready[T any](v T) *Lazy[T] {
	return &Lazy[T]{done: true, value: v}
}

// Force runs the suspended computation if needed and returns its value.
// If the computation panics the Lazy stays unforced and the panic
// propagates to the caller.
func (l *Lazy[T]) Force() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		l.value = l.thunk()
		l.done = true
		l.thunk = nil
	}
	return l.value
}

// Forced reports whether the computation has already run.
func (l *Lazy[T]) Forced() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}
