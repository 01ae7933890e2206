package core

import "testing"

// sliceStream is a bounded stream over a slice. It counts the Head and
// Tail calls made on any of its nodes.
type sliceStream[T any] struct {
	items []T
	pos   int
	calls *calls
}

type calls struct {
	heads int
	tails int
}

func fromSlice[T any](c *calls, items ...T) Stream[T] {
	if c == nil {
		c = &calls{}
	}
	return &sliceStream[T]{items: items, calls: c}
}

func (s *sliceStream[T]) Head() T {
	s.calls.heads++
	return s.items[s.pos]
}

func (s *sliceStream[T]) Tail() (Stream[T], error) {
	s.calls.tails++
	if s.pos+1 >= len(s.items) {
		return nil, ErrExhausted
	}
	return &sliceStream[T]{items: s.items, pos: s.pos + 1, calls: s.calls}, nil
}

type constStream[T any] struct{ v T }

func repeat[T any](v T) Stream[T] { return constStream[T]{v} }

func (c constStream[T]) Head() T {
	return c.v
}

func (c constStream[T]) Tail() (Stream[T], error) {
	return c, nil
}

// take reads n values of s, failing the test on any error.
func take[T any](t *testing.T, s Stream[T], n int) []T {
	t.Helper()
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, s.Head())
		if i == n-1 {
			break
		}
		next, err := s.Tail()
		if err != nil {
			t.Fatalf("Tail() after %d values: %v", i+1, err)
		}
		s = next
	}
	return out
}

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	f()
}

func equal[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
