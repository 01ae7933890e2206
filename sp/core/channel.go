package core

import (
	"context"
	"sync"
)

// Channel creates a channel whose receiving end is a Stream. The stream's
// head is initial, a placeholder received "in advance"; each Tail receives
// the next message, blocking until one is sent. Once the channel is closed
// and drained, Tail returns ErrExhausted.
//
// capacity is the channel's buffer size; 0 makes sends synchronous.
func Channel[T any](capacity int, initial T) (chan<- T, Stream[T]) {
	ch := make(chan T, capacity)
	return ch, &received[T]{head: initial, ch: ch, ctx: context.Background()}
}

// Receive blocks until the first message arrives on ch and returns a Stream
// starting at it. Each Tail receives one more message. If ch is closed
// before a message arrives, Receive returns ErrExhausted; if ctx is done,
// it returns ctx.Err(). Tail reports the same conditions.
func Receive[T any](ctx context.Context, ch <-chan T) (Stream[T], error) {
	head, err := recv(ctx, ch)
	if err != nil {
		return nil, err
	}
	return &received[T]{head: head, ch: ch, ctx: ctx}, nil
}

func recv[T any](ctx context.Context, ch <-chan T) (T, error) {
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case v, ok := <-ch:
		if !ok {
			var zero T
			return zero, ErrExhausted
		}
		return v, nil
	}
}

// received is a channel-backed stream node. Its tail is received at most
// once, so a message is never taken from the channel twice for one node.
type received[T any] struct {
	head T
	ch   <-chan T
	ctx  context.Context

	once sync.Once
	tail Stream[T]
	err  error
}

func (r *received[T]) Head() T {
	return r.head
}

func (r *received[T]) Tail() (Stream[T], error) {
	r.once.Do(func() {
		v, err := recv(r.ctx, r.ch)
		if err != nil {
			r.err = err
			return
		}
		r.tail = &received[T]{head: v, ch: r.ch, ctx: r.ctx}
	})
	return r.tail, r.err
}
