package sp

import (
	"iter"
)

// Take returns the first n values of s. It reads n heads and advances
// n-1 times, so it never consumes more of s than it returns. If s runs out
// first, Take returns the values read so far together with the error.
func Take[T any](s Stream[T], n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]T, 0, n)
	for {
		out = append(out, s.Head())
		if len(out) == n {
			return out, nil
		}
		next, err := s.Tail()
		if err != nil {
			return out, err
		}
		s = next
	}
}

// Drop advances s n times and returns the stream positioned after the
// first n values.
func Drop[T any](s Stream[T], n int) (Stream[T], error) {
	for i := 0; i < n; i++ {
		next, err := s.Tail()
		if err != nil {
			return nil, err
		}
		s = next
	}
	return s, nil
}

// Nth returns the value at index n (zero-based) of s.
func Nth[T any](s Stream[T], n int) (T, error) {
	s, err := Drop(s, n)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Head(), nil
}

// All returns an iterator over the values of s. Iteration stops when s is
// exhausted; any other failure is yielded once as a final (zero, err) pair.
// Iterating an infinite stream never ends unless the loop breaks.
func All[T any](s Stream[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			if !yield(s.Head(), nil) {
				return
			}
			next, err := s.Tail()
			if err != nil {
				if !IsExhausted(err) {
					var zero T
					yield(zero, err)
				}
				return
			}
			s = next
		}
	}
}

// Collect gathers at most max values of s into a slice, stopping early
// without error when s is exhausted.
func Collect[T any](s Stream[T], max int) ([]T, error) {
	values, err := Take(s, max)
	if IsExhausted(err) {
		return values, nil
	}
	return values, err
}
