// Package parallel evaluates several processors concurrently over one
// input stream.
//
// Eval deals the input elements to the branches in rotation, the i-th
// element going to branch i mod N, runs every branch on its own goroutine
// and merges the branch outputs back into a single lazy stream. The
// goroutines are supervised by a tomb: the first branch failure stops the
// whole evaluation and is returned by the merged stream.
//
// Each branch sees a subsequence of the input, so the result only has a
// meaning independent of N when the branches are stateless per element
// (Map, Filter and similar). Stateful processors are still allowed; they
// then observe every N-th element.
package parallel

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/tomb.v2"

	"github.com/lguimbarda/min-sp/sp/core"
)

// Eval runs every branch concurrently over its share of in and returns the
// merged stream of their outputs. It returns once the first merged output
// is available, or with an error if none can be produced.
//
// Under RoundRobin a branch that emits less often than the others holds up
// the merge until it emits or retires. Meanwhile the outputs of the other
// branches are queued, so the dispatcher can keep feeding the lagging
// branch; on an unbounded input such a queue may grow without limit.
//
// Cancelling ctx stops the dispatcher and the branches; the merged stream
// then fails with the context's error. A caller that stops reading the
// merged stream before it ends must cancel ctx, otherwise the goroutines
// of the evaluation stay blocked forever. A source whose Tail blocks
// without watching ctx (for example a plain channel stream) delays the
// shutdown until its next element arrives.
func Eval[A, B any](ctx context.Context, in core.Stream[A], branches []core.Processor[A, B], opts ...Option) (core.Stream[B], error) {
	if in == nil {
		panic("parallel: Eval with nil stream")
	}
	s := applyOptions(opts...)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(branches) == 0 {
		return nil, ErrNoBranches
	}

	parent := ctx
	t, ctx := tomb.WithContext(parent)
	rt := &runtime[A, B]{
		tomb:     t,
		ctx:      ctx,
		parent:   parent,
		abort:    aborted(parent, t),
		demand:   newDemand(),
		logger:   s.logger,
		evalOpts: s.evalOpts,
	}

	inSize, outSize := s.BufferSize, s.BufferSize
	if s.BufferSize == Unbounded {
		inSize = DefaultBufferSize
	}
	// Round-robin outputs go through a relay whose queue holds up to
	// BufferSize values, and grows past that only while the merge is
	// blocked on another branch.
	queued := s.Merge == RoundRobin || s.BufferSize == Unbounded
	if queued {
		outSize = 0
	}
	limit := max(s.BufferSize, 1)
	if s.BufferSize == Unbounded {
		limit = Unbounded
	}
	outputs := make([]output[B], len(branches))
	for i, sp := range branches {
		b := &branch[A, B]{
			id:  i,
			sp:  sp,
			in:  make(chan A, inSize),
			out: make(chan core.Result[B], outSize),
		}
		rt.branches = append(rt.branches, b)
		outputs[i] = output[B]{id: i, ch: b.out}
		if queued {
			outputs[i].ch = relay(rt.abort, b.out, i, limit, rt.demand)
		}
	}

	rt.logger.Debug("parallel evaluation started",
		"branches", len(branches),
		"merge", s.Merge.String(),
		"buffer_size", s.BufferSize)

	// Nothing runs before every goroutine is registered, so the tomb
	// cannot die while Go is still being called.
	start := make(chan struct{})
	for _, b := range rt.branches {
		t.Go(func() error {
			<-start
			return rt.work(b)
		})
	}
	t.Go(func() error {
		<-start
		return rt.dispatch(in)
	})
	close(start)

	if s.Merge == FirstReady {
		return nextFirstReady(rt, fanIn(rt.abort, outputs))
	}
	return nextRoundRobin(rt, outputs, 0)
}

// Replicate returns n copies of sp, for use as Eval branches. Processors
// are persistent values, so the copies share nothing mutable.
func Replicate[A, B any](n int, sp core.Processor[A, B]) []core.Processor[A, B] {
	if n <= 0 {
		n = 1
	}
	branches := make([]core.Processor[A, B], n)
	for i := range branches {
		branches[i] = sp
	}
	return branches
}

type runtime[A, B any] struct {
	tomb   *tomb.Tomb
	ctx    context.Context
	parent context.Context

	// abort is closed when the evaluation stops early. The tomb's context
	// is also cancelled on a clean finish, so relays must not watch it.
	abort    <-chan struct{}
	demand   *demand
	logger   *slog.Logger
	evalOpts []core.EvalOption
	branches []*branch[A, B]
}

type branch[A, B any] struct {
	id  int
	sp  core.Processor[A, B]
	in  chan A
	out chan core.Result[B]
}

// output is the receiving end of one branch, as seen by the merge.
type output[B any] struct {
	id int
	ch <-chan core.Result[B]
}

// dispatch deals the input elements to the branches in rotation and closes
// every branch input when the source is exhausted or the tomb is dying.
func (rt *runtime[A, B]) dispatch(in core.Stream[A]) error {
	defer func() {
		for _, b := range rt.branches {
			close(b.in)
		}
	}()

	for i := 0; ; i++ {
		b := rt.branches[i%len(rt.branches)]
		select {
		case <-rt.ctx.Done():
			return nil
		case b.in <- in.Head():
		}

		next, err := in.Tail()
		if err != nil {
			if core.IsExhausted(err) {
				rt.logger.Debug("input exhausted", "dispatched", i+1)
				return nil
			}
			if rt.ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("parallel: input: %w", err)
		}
		in = next
	}
}

// work evaluates one branch over its input channel and forwards the outputs.
// A branch failure kills the tomb before the error is offered to the merge,
// so the other goroutines are already stopping when it is observed.
func (rt *runtime[A, B]) work(b *branch[A, B]) error {
	defer close(b.out)
	logger := rt.logger.With("branch", b.id)

	src, err := core.Receive(rt.ctx, b.in)
	if err != nil {
		if core.IsExhausted(err) {
			logger.Debug("branch retired", "outputs", 0)
		}
		return nil
	}

	outs, err := core.Eval(b.sp, src, rt.evalOpts...)
	n := 0
	for err == nil {
		select {
		case <-rt.ctx.Done():
			return nil
		case b.out <- core.Ok(outs.Head()):
			n++
		}
		outs, err = outs.Tail()
	}

	switch {
	case core.IsExhausted(err):
		logger.Debug("branch retired", "outputs", n)
		return nil
	case rt.ctx.Err() != nil:
		return nil
	}

	err = fmt.Errorf("parallel: branch %d: %w", b.id, err)
	logger.Debug("branch failed", "outputs", n, "error", err)
	rt.tomb.Kill(err)
	select {
	case b.out <- core.Err[B](err):
	default:
	}
	return err
}

// finish is the outcome once no branch can produce anything more: the
// reason the tomb was killed, or exhaustion when every goroutine ended
// cleanly.
func (rt *runtime[A, B]) finish() error {
	err := rt.tomb.Err()
	if err == tomb.ErrStillAlive {
		// Every branch closed its output, so the dispatcher is returning.
		err = rt.tomb.Wait()
	}
	if err != nil {
		return err
	}
	if err := rt.parent.Err(); err != nil {
		// cancelled while the branches were stopping cleanly
		return err
	}
	rt.logger.Debug("parallel evaluation finished")
	return core.ErrExhausted
}

// aborted returns a channel closed when parent is done or t is killed with
// an error. A tomb dying cleanly leaves it open.
func aborted(parent context.Context, t *tomb.Tomb) <-chan struct{} {
	abort := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
		case <-t.Dying():
			if t.Err() == nil {
				return
			}
		}
		close(abort)
	}()
	return abort
}
