package sp

import (
	"github.com/lguimbarda/min-sp/sp/core"
)

// Then composes two processors sequentially: every output of first becomes
// an input of second, without building an intermediate stream.
//
// second always gets to emit before first is asked for anything, so the
// composition produces outputs as early as possible. When second needs
// input, first is run until it emits; when first needs input, the
// composition reads from the outer stream. The continuation of an output
// of first is only forced once second asks for the next value, so a
// processor may be defined in terms of its own composition:
//
//	p = Put(1, func() Processor[int, int] { return Then(p, inc) })
func Then[A, M, B any](first Processor[A, M], second Processor[M, B]) Processor[A, B] {
	return then(core.Ready(first), second)
}

func then[A, M, B any](first *Lazy[Processor[A, M]], second Processor[M, B]) Processor[A, B] {
	for {
		if b, next2, ok := second.Emitting(); ok {
			parked := first
			return core.Put(b, func() Processor[A, B] {
				return then(parked, next2.Force())
			})
		}
		k2, ok := second.Awaiting()
		if !ok {
			return Processor[A, B]{}
		}
		sp1 := first.Force()
		if k1, ok := sp1.Awaiting(); ok {
			waiting := second
			return core.Get(func(a A) Processor[A, B] {
				return then(core.Ready(k1(a)), waiting)
			})
		}
		m, next1, ok := sp1.Emitting()
		if !ok {
			return Processor[A, B]{}
		}
		first, second = next1, k2(m)
	}
}

// Pipe chains processors of the same type from left to right.
func Pipe[T any](first Processor[T, T], rest ...Processor[T, T]) Processor[T, T] {
	result := first
	for _, sp := range rest {
		result = Then(result, sp)
	}
	return result
}

// Alternate runs sp1 until it emits, then hands control to sp2 until that
// emits, and so on, like two coroutines sharing one input stream.
func Alternate[A, B any](sp1, sp2 Processor[A, B]) Processor[A, B] {
	if k, ok := sp1.Awaiting(); ok {
		return core.Get(func(a A) Processor[A, B] {
			return Alternate(k(a), sp2)
		})
	}
	if b, next, ok := sp1.Emitting(); ok {
		return core.Put(b, func() Processor[A, B] {
			return Alternate(sp2, next.Force())
		})
	}
	return sp1
}
