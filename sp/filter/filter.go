// Package filter provides processors that select or route inputs: plain
// filters, and branching combinators that pick a continuation by
// inspecting the input just read.
package filter

import (
	"github.com/lguimbarda/min-sp/sp/core"
)

// Filter passes through the inputs satisfying p and drops the others.
func Filter[A any](p func(A) bool) core.Processor[A, A] {
	if p == nil {
		panic("filter: nil predicate")
	}
	var sp core.Processor[A, A]
	sp = core.Get(func(a A) core.Processor[A, A] {
		if p(a) {
			return core.Emit(a, sp)
		}
		return sp
	})
	return sp
}

// Reject drops the inputs satisfying p.
func Reject[A any](p func(A) bool) core.Processor[A, A] {
	if p == nil {
		panic("filter: nil predicate")
	}
	return Filter(func(a A) bool { return !p(a) })
}

// Branch reads one input and continues as yes if pred holds for it and as
// no otherwise. The chosen processor receives that input as its first one.
// Branching is a decision inside a Get continuation, not a separate state:
// after the chosen processor takes over, Branch plays no further part.
func Branch[A, B any](pred func(A) bool, yes, no core.Processor[A, B]) core.Processor[A, B] {
	if pred == nil {
		panic("filter: nil predicate")
	}
	return core.Get(func(a A) core.Processor[A, B] {
		if pred(a) {
			return yes.Feed(a)
		}
		return no.Feed(a)
	})
}

// Case pairs a key with the processor Switch continues as for that key.
type Case[K comparable, A, B any] struct {
	Key  K
	Then core.Processor[A, B]
}

// Switch reads one input, computes its key and continues as the processor
// of the matching case, or as fallback when no case matches. Like Branch,
// the chosen processor receives the input that selected it.
func Switch[K comparable, A, B any](key func(A) K, fallback core.Processor[A, B], cases ...Case[K, A, B]) core.Processor[A, B] {
	if key == nil {
		panic("filter: nil key function")
	}
	table := make(map[K]core.Processor[A, B], len(cases))
	for _, c := range cases {
		if _, dup := table[c.Key]; !dup {
			table[c.Key] = c.Then
		}
	}
	return core.Get(func(a A) core.Processor[A, B] {
		if sp, ok := table[key(a)]; ok {
			return sp.Feed(a)
		}
		return fallback.Feed(a)
	})
}

// Distinct drops inputs equal to the input just before them.
func Distinct[A comparable]() core.Processor[A, A] {
	var after func(prev A) core.Processor[A, A]
	after = func(prev A) core.Processor[A, A] {
		return core.Get(func(a A) core.Processor[A, A] {
			if a == prev {
				return after(prev)
			}
			return core.Put(a, func() core.Processor[A, A] { return after(a) })
		})
	}
	return core.Get(func(a A) core.Processor[A, A] {
		return core.Put(a, func() core.Processor[A, A] { return after(a) })
	})
}

// Every passes through every n-th input, starting with the first, and
// drops the rest. n <= 1 passes everything.
func Every[A any](n int) core.Processor[A, A] {
	if n <= 1 {
		return core.Identity[A]()
	}
	var skip func(left int) core.Processor[A, A]
	skip = func(left int) core.Processor[A, A] {
		return core.Get(func(a A) core.Processor[A, A] {
			if left == 0 {
				return core.Put(a, func() core.Processor[A, A] { return skip(n - 1) })
			}
			return skip(left - 1)
		})
	}
	return skip(0)
}
