package core

import "sync"

// Eval runs sp against the input stream in and returns the stream of its
// outputs. The returned stream is computed lazily: Eval only runs sp up to
// its first output, and each Tail of the result runs it up to the next.
//
// Every Get transition consumes exactly one input element (its Head, then
// its Tail). If that Tail fails, the failure is held back until a later Get
// actually needs another element, so outputs computed from elements already
// read are never lost and a stream of n elements serves exactly n Gets.
// The failure is then returned by Eval or by the result's Tail.
//
// Panics raised by continuations are recovered and returned as ErrPanic.
func Eval[A, B any](sp Processor[A, B], in Stream[A], opts ...EvalOption) (Stream[B], error) {
	if in == nil {
		panic("core: Eval with nil stream")
	}
	hooks := newHookInvoker(applyOptions(opts...))
	return run(Ready(sp), cursor[A]{in: in}, hooks)
}

// cursor is a position in the input stream: either the stream holding the
// next unread element, or the failure of the Tail that should have
// produced it.
type cursor[A any] struct {
	in  Stream[A]
	err error
}

// next consumes one element.
func (c cursor[A]) next() (A, cursor[A], error) {
	if c.err != nil {
		var zero A
		return zero, c, c.err
	}
	a := c.in.Head()
	rest, err := c.in.Tail()
	if err != nil {
		return a, cursor[A]{err: err}, nil
	}
	return a, cursor[A]{in: rest}, nil
}

// run forces next and follows the chain of Gets until a Put is reached.
// It is a loop rather than a recursion so chains of any length run in
// constant stack.
func run[A, B any](next *Lazy[Processor[A, B]], at cursor[A], hooks *hookInvoker) (s Stream[B], err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, NewPanicError(r)
		}
		if err != nil {
			hooks.invokeFail(err)
		}
	}()

	sp := next.Force()
	for sp.phase == PhaseGet {
		a, rest, readErr := at.next()
		if readErr != nil {
			return nil, readErr
		}
		hooks.invokeGet()
		sp, at = sp.k(a), rest
	}
	if sp.phase != PhasePut {
		return nil, ErrMalformed
	}
	hooks.invokePut()
	return &evaluated[A, B]{head: sp.out, next: sp.next, at: at, hooks: hooks}, nil
}

// evaluated is one node of an output stream: a produced value plus what is
// needed to produce the rest, kept until the first Tail.
type evaluated[A, B any] struct {
	head  B
	hooks *hookInvoker

	mu   sync.Mutex
	done bool
	next *Lazy[Processor[A, B]]
	at   cursor[A]
	tail Stream[B]
	err  error
}

func (e *evaluated[A, B]) Head() B {
	return e.head
}

// Tail resumes the processor from the input position reached for this
// node. The outcome is memoized: repeated calls return the same successor
// (or failure) without touching the input again.
func (e *evaluated[A, B]) Tail() (Stream[B], error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.done {
		e.tail, e.err = run(e.next, e.at, e.hooks)
		e.done = true
		e.next, e.at = nil, cursor[A]{}
	}
	return e.tail, e.err
}
