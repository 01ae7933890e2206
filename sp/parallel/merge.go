package parallel

import (
	"slices"
	"sync"

	"github.com/lguimbarda/min-sp/sp/core"
)

// roundRobin is one node of a round-robin merged stream. active is the
// rotation of branches still producing and pos the index in it of the
// branch owing the next output. active is never modified in place, so
// nodes can share it.
type roundRobin[A, B any] struct {
	rt     *runtime[A, B]
	head   B
	active []output[B]
	pos    int

	once sync.Once
	tail core.Stream[B]
	err  error
}

func nextRoundRobin[A, B any](rt *runtime[A, B], active []output[B], pos int) (core.Stream[B], error) {
	for len(active) > 0 {
		pos %= len(active)
		res, ok := receive(rt.demand, active[pos])
		if !ok {
			rt.logger.Debug("branch left rotation", "branch", active[pos].id, "remaining", len(active)-1)
			active = slices.Delete(slices.Clone(active), pos, pos+1)
			continue
		}
		if res.IsError() {
			return nil, res.Error()
		}
		return &roundRobin[A, B]{rt: rt, head: res.Value(), active: active, pos: pos + 1}, nil
	}
	return nil, rt.finish()
}

func (r *roundRobin[A, B]) Head() B {
	return r.head
}

func (r *roundRobin[A, B]) Tail() (core.Stream[B], error) {
	r.once.Do(func() {
		r.tail, r.err = nextRoundRobin(r.rt, r.active, r.pos)
		r.active = nil
	})
	return r.tail, r.err
}

// firstReady is one node of a stream merging outputs in arrival order.
type firstReady[A, B any] struct {
	rt     *runtime[A, B]
	head   B
	merged <-chan core.Result[B]

	once sync.Once
	tail core.Stream[B]
	err  error
}

func nextFirstReady[A, B any](rt *runtime[A, B], merged <-chan core.Result[B]) (core.Stream[B], error) {
	res, ok := <-merged
	if !ok {
		return nil, rt.finish()
	}
	if res.IsError() {
		return nil, res.Error()
	}
	return &firstReady[A, B]{rt: rt, head: res.Value(), merged: merged}, nil
}

func (f *firstReady[A, B]) Head() B {
	return f.head
}

func (f *firstReady[A, B]) Tail() (core.Stream[B], error) {
	f.once.Do(func() {
		f.tail, f.err = nextFirstReady(f.rt, f.merged)
	})
	return f.tail, f.err
}

// fanIn merges the branch outputs into one channel, closed once every
// branch output is closed.
func fanIn[B any](abort <-chan struct{}, outputs []output[B]) <-chan core.Result[B] {
	merged := make(chan core.Result[B])
	var wg sync.WaitGroup
	wg.Add(len(outputs))
	for _, o := range outputs {
		go func(ch <-chan core.Result[B]) {
			defer wg.Done()
			for res := range ch {
				select {
				case <-abort:
					// keep draining so the branch can close its output
				case merged <- res:
				}
			}
		}(o.ch)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()
	return merged
}

// receive takes the next value of o, recording in d that the merge is
// blocked on o while it waits.
func receive[B any](d *demand, o output[B]) (core.Result[B], bool) {
	select {
	case res, ok := <-o.ch:
		return res, ok
	default:
	}
	d.set(o.id)
	defer d.set(noBranch)
	res, ok := <-o.ch
	return res, ok
}

const noBranch = -1

// demand tracks the branch the round-robin merge is blocked on.
type demand struct {
	mu      sync.Mutex
	waiting int
	changed chan struct{} // closed and replaced on every change
}

func newDemand() *demand {
	return &demand{waiting: noBranch, changed: make(chan struct{})}
}

func (d *demand) set(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waiting = id
	close(d.changed)
	d.changed = make(chan struct{})
}

func (d *demand) state() (int, <-chan struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.waiting, d.changed
}

// relay forwards the output of branch id through a queue. The queue takes
// up to limit values; beyond that it only takes more while the merge is
// blocked on another branch. A negative limit never stops it.
func relay[T any](abort <-chan struct{}, in <-chan T, id, limit int, d *demand) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		var queue []T
		for in != nil || len(queue) > 0 {
			var send chan<- T
			var first T
			if len(queue) > 0 {
				send, first = out, queue[0]
			}
			recv := in
			var changed <-chan struct{}
			if limit >= 0 && len(queue) >= limit {
				waiting, c := d.state()
				if waiting == noBranch || waiting == id {
					recv, changed = nil, c
				}
			}
			select {
			case <-abort:
				// drain so the branch can close its output, then stop
				if in != nil {
					for range in {
					}
				}
				return
			case <-changed:
			case v, ok := <-recv:
				if !ok {
					in = nil
					continue
				}
				queue = append(queue, v)
			case send <- first:
				var zero T
				queue[0] = zero
				queue = queue[1:]
			}
		}
	}()
	return out
}
