package core

import "fmt"

// Phase tells which of its two constructors a Processor was built with.
type Phase int

const (
	// PhaseInvalid is the phase of the zero Processor.
	PhaseInvalid Phase = iota
	// PhaseGet processors are awaiting one input value.
	PhaseGet
	// PhasePut processors are emitting one output value.
	PhasePut
)

func (p Phase) String() string {
	switch p {
	case PhaseGet:
		return "get"
	case PhasePut:
		return "put"
	default:
		return "invalid"
	}
}

// Processor turns a stream of A into a stream of B. It is either awaiting
// an input (Get) or emitting an output (Put); there is no terminal state.
// A well-formed processor reaches a Put after finitely many Gets.
//
// Processors are immutable values and may be shared freely. The zero
// Processor is not valid; build processors with Get, Put and Emit.
type Processor[A, B any] struct {
	phase Phase
	k     func(A) Processor[A, B]
	out   B
	next  *Lazy[Processor[A, B]]
}

// Get builds a processor that reads one input and continues with k(input).
func Get[A, B any](k func(A) Processor[A, B]) Processor[A, B] {
	if k == nil {
		panic("core: Get with nil continuation")
	}
	return Processor[A, B]{phase: PhaseGet, k: k}
}

// Put builds a processor that emits b now. The continuation is suspended
// and only built when evaluation proceeds past b, which is what makes
// recursive definitions like
//
//	func ones() Processor[int, int] { return Put(1, ones) }
//
// productive.
func Put[A, B any](b B, next func() Processor[A, B]) Processor[A, B] {
	if next == nil {
		panic("core: Put with nil continuation")
	}
	return Processor[A, B]{phase: PhasePut, out: b, next: Suspend(next)}
}

// PutLazy is Put with an explicit suspended continuation, for combinators
// that share one continuation between several processors.
func PutLazy[A, B any](b B, next *Lazy[Processor[A, B]]) Processor[A, B] {
	if next == nil {
		panic("core: Put with nil continuation")
	}
	return Processor[A, B]{phase: PhasePut, out: b, next: next}
}

// Emit emits b and continues with the already built sp. Use Put instead
// when the continuation refers back to the processor being defined.
func Emit[A, B any](b B, sp Processor[A, B]) Processor[A, B] {
	return Processor[A, B]{phase: PhasePut, out: b, next: Ready(sp)}
}

// Phase returns the processor's constructor.
func (p Processor[A, B]) Phase() Phase {
	return p.phase
}

// Awaiting returns the input continuation of a Get processor.
func (p Processor[A, B]) Awaiting() (func(A) Processor[A, B], bool) {
	if p.phase != PhaseGet {
		return nil, false
	}
	return p.k, true
}

// Emitting returns the output and suspended continuation of a Put processor.
func (p Processor[A, B]) Emitting() (B, *Lazy[Processor[A, B]], bool) {
	if p.phase != PhasePut {
		var zero B
		return zero, nil, false
	}
	return p.out, p.next, true
}

// Feed hands a to the processor from outside, push-style. A Get consumes
// it at once. A Put keeps its output and passes a on to its continuation
// when that is forced. Feeding the zero Processor returns it unchanged.
func (p Processor[A, B]) Feed(a A) Processor[A, B] {
	switch p.phase {
	case PhaseGet:
		return p.k(a)
	case PhasePut:
		next := p.next
		return Put(p.out, func() Processor[A, B] {
			return next.Force().Feed(a)
		})
	default:
		return p
	}
}

func (p Processor[A, B]) String() string {
	switch p.phase {
	case PhaseGet:
		return "Get(...)"
	case PhasePut:
		return fmt.Sprintf("Put(%v, ...)", p.out)
	default:
		return "Invalid"
	}
}
