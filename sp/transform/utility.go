// Package transform provides state-passing processors: generators and
// machines that remember values between outputs by closing over updated
// state instead of mutating shared storage.
package transform

import (
	"github.com/lguimbarda/min-sp/sp/core"
)

// Unfold builds a Mealy machine: for each input, step maps the current
// state and the input to one output and the next state.
func Unfold[S, A, B any](state S, step func(S, A) (B, S)) core.Processor[A, B] {
	if step == nil {
		panic("transform: nil step function")
	}
	return core.Get(func(a A) core.Processor[A, B] {
		b, next := step(state, a)
		return core.Put(b, func() core.Processor[A, B] {
			return Unfold(next, step)
		})
	})
}

// Scan emits the running fold of its inputs: f(init, a1), f(f(init, a1), a2), ...
func Scan[A, B any](init B, f func(B, A) B) core.Processor[A, B] {
	if f == nil {
		panic("transform: nil fold function")
	}
	return Unfold(init, func(acc B, a A) (B, B) {
		next := f(acc, a)
		return next, next
	})
}

// Generate builds a demand-driven processor that never reads its input:
// each output and the next state come from step applied to the current
// state. Evaluated against any stream, it yields an infinite stream of
// outputs without consuming a single input element.
func Generate[A, S, B any](state S, step func(S) (B, S)) core.Processor[A, B] {
	if step == nil {
		panic("transform: nil step function")
	}
	b, next := step(state)
	return core.Put(b, func() core.Processor[A, B] {
		return Generate[A](next, step)
	})
}

// Repeat emits b forever without reading input.
func Repeat[A, B any](b B) core.Processor[A, B] {
	var sp core.Processor[A, B]
	sp = core.Put(b, func() core.Processor[A, B] { return sp })
	return sp
}

// Prepend emits outs in order and then continues as sp.
func Prepend[A, B any](outs []B, sp core.Processor[A, B]) core.Processor[A, B] {
	for i := len(outs) - 1; i >= 0; i-- {
		sp = core.Emit(outs[i], sp)
	}
	return sp
}

// FlatMap emits every value of f(a) for each input a. Inputs mapped to an
// empty slice produce nothing.
func FlatMap[A, B any](f func(A) []B) core.Processor[A, B] {
	if f == nil {
		panic("transform: nil function")
	}
	var sp core.Processor[A, B]
	sp = core.Get(func(a A) core.Processor[A, B] {
		return Prepend(f(a), sp)
	})
	return sp
}

// Chunk groups consecutive inputs into slices of n. n <= 0 is treated as 1.
// Every emitted slice is freshly allocated.
func Chunk[A any](n int) core.Processor[A, []A] {
	if n <= 0 {
		n = 1
	}
	var fill func(buf []A) core.Processor[A, []A]
	fill = func(buf []A) core.Processor[A, []A] {
		return core.Get(func(a A) core.Processor[A, []A] {
			// full slice expression: never append into a shared backing array
			grown := append(buf[:len(buf):len(buf)], a)
			if len(grown) < n {
				return fill(grown)
			}
			return core.Put(grown, func() core.Processor[A, []A] {
				return fill(nil)
			})
		})
	}
	return fill(nil)
}
