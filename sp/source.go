package sp

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/lguimbarda/min-sp/sp/core"
)

// Bounded sources.

// List creates a bounded Stream of x followed by xs. The Tail of its last
// element returns ErrExhausted.
func List[T any](x T, xs ...T) Stream[T] {
	items := make([]T, 0, len(xs)+1)
	items = append(items, x)
	items = append(items, xs...)
	return &list[T]{items: items}
}

// FromSlice creates a bounded Stream of the given items. The slice is
// copied. An empty slice has no head, so FromSlice returns ErrExhausted.
func FromSlice[T any](items []T) (Stream[T], error) {
	if len(items) == 0 {
		return nil, ErrExhausted
	}
	return &list[T]{items: slices.Clone(items)}, nil
}

// list is a position in an immutable slice.
type list[T any] struct {
	items []T
	pos   int
}

func (l *list[T]) Head() T {
	return l.items[l.pos]
}

func (l *list[T]) Tail() (Stream[T], error) {
	if l.pos+1 >= len(l.items) {
		return nil, ErrExhausted
	}
	return &list[T]{items: l.items, pos: l.pos + 1}, nil
}

// FromIter creates a bounded Stream pulling values from seq. Call stop to
// release the iterator if the stream is abandoned before it is exhausted.
// An empty sequence returns ErrExhausted.
func FromIter[T any](seq iter.Seq[T]) (s Stream[T], stop func(), err error) {
	next, stop := iter.Pull(seq)
	pull := func() (T, error) {
		v, ok := next()
		if !ok {
			return v, ErrExhausted
		}
		return v, nil
	}
	head, err := pull()
	if err != nil {
		stop()
		return nil, stop, err
	}
	return newPolled(head, pull), stop, nil
}

// Unbounded sources.

// Constant creates an infinite Stream repeating x.
func Constant[T any](x T) Stream[T] {
	return constant[T]{x: x}
}

type constant[T any] struct {
	x T
}

func (c constant[T]) Head() T {
	return c.x
}

func (c constant[T]) Tail() (Stream[T], error) {
	return c, nil
}

// Iterate creates the infinite Stream seed, f(seed), f(f(seed)), ...
// Each successor is computed once, on first demand.
func Iterate[T any](seed T, f func(T) T) Stream[T] {
	if f == nil {
		panic("sp: Iterate with nil function")
	}
	var from func(T) Stream[T]
	from = func(x T) Stream[T] {
		return Cons(x, func() Stream[T] { return from(f(x)) })
	}
	return from(seed)
}

// Cons creates an infinite list: x followed by the stream built by rest.
// rest runs once, on the first Tail.
func Cons[T any](x T, rest func() Stream[T]) Stream[T] {
	if rest == nil {
		panic("sp: Cons with nil rest")
	}
	return &cons[T]{head: x, rest: core.Suspend(rest)}
}

// Prepend puts x in front of an already built stream.
func Prepend[T any](x T, s Stream[T]) Stream[T] {
	return &cons[T]{head: x, rest: core.Ready(s)}
}

type cons[T any] struct {
	head T
	rest *Lazy[Stream[T]]
}

func (c *cons[T]) Head() T {
	return c.head
}

func (c *cons[T]) Tail() (Stream[T], error) {
	return c.rest.Force(), nil
}

// Repeatedly creates an infinite Stream of values produced by read, for
// example samples from a sensor. read is called once for the head and
// then exactly once per stream node, on that node's first Tail. Head never
// calls read.
func Repeatedly[T any](read func() T) Stream[T] {
	if read == nil {
		panic("sp: Repeatedly with nil function")
	}
	return newPolled(read(), func() (T, error) { return read(), nil })
}

// Poll is Repeatedly for fallible sources. When read fails, the Tail that
// called it fails with an error wrapping both ErrExhausted and the read
// error, ending the stream. If the very first read fails, Poll returns
// that error.
func Poll[T any](read func() (T, error)) (Stream[T], error) {
	if read == nil {
		panic("sp: Poll with nil function")
	}
	guarded := func() (T, error) {
		v, err := read()
		if err != nil && !core.IsExhausted(err) {
			return v, fmt.Errorf("%w: %w", ErrExhausted, err)
		}
		return v, err
	}
	head, err := guarded()
	if err != nil {
		return nil, err
	}
	return newPolled(head, guarded), nil
}

// polled is a stream node whose successor is produced by a side-effecting
// read, performed at most once per node.
type polled[T any] struct {
	head T
	rest *Lazy[polledTail[T]]
}

type polledTail[T any] struct {
	s   Stream[T]
	err error
}

func newPolled[T any](head T, read func() (T, error)) *polled[T] {
	return &polled[T]{
		head: head,
		rest: core.Suspend(func() polledTail[T] {
			v, err := read()
			if err != nil {
				return polledTail[T]{err: err}
			}
			return polledTail[T]{s: newPolled(v, read)}
		}),
	}
}

func (p *polled[T]) Head() T {
	return p.head
}

func (p *polled[T]) Tail() (Stream[T], error) {
	t := p.rest.Force()
	return t.s, t.err
}

// Channel sources - wrappers around core functions.

// Channel creates a channel whose receiving end is a Stream with the given
// placeholder head.
func Channel[T any](capacity int, initial T) (chan<- T, Stream[T]) {
	return core.Channel(capacity, initial)
}

// Receive waits for the first message on ch and returns a Stream of all
// messages received from it.
func Receive[T any](ctx context.Context, ch <-chan T) (Stream[T], error) {
	return core.Receive(ctx, ch)
}
