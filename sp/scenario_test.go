package sp_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"slices"
	"testing"

	"github.com/lguimbarda/min-sp/sp"
	"github.com/lguimbarda/min-sp/sp/filter"
	"github.com/lguimbarda/min-sp/sp/observe"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEval_Branching(t *testing.T) {
	const n = 2
	id := sp.Identity[int]()
	p := sp.Get(func(x int) sp.Processor[int, int] {
		if x%2 == 0 {
			return sp.Emit(x+n, sp.Emit(x, id))
		}
		return sp.Emit(x-n, sp.Emit(x, id))
	})

	got := evalTake(t, p, sp.Constant(n), 2)
	if want := []int{n + n, n}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMap_OverChannel(t *testing.T) {
	tx, stream := sp.Channel(2, 0)
	tx <- 1
	tx <- 10

	got := evalTake(t, sp.Map(func(n int) int { return n + 1 }), stream, 2)
	if want := []int{1, 2}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFilter_OverChannel(t *testing.T) {
	tx, stream := sp.Channel(4, 0)
	for _, v := range []int{1, 0, 2, 10} {
		tx <- v
	}

	got := evalTake(t, filter.Filter(func(n int) bool { return n > 0 }), stream, 2)
	if want := []int{1, 2}; !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBasic(t *testing.T) {
	const n = 3
	p := sp.Get(func(x int) sp.Processor[int, int] {
		if x%2 == 0 {
			return sp.Emit(n, sp.Map(func(x int) int { return n * x }))
		}
		return sp.Emit(n+1, sp.Map(func(x int) int { return n*x + 1 }))
	})

	tx, stream := sp.Channel(0, 0)
	sent := make(chan struct{})
	go func() {
		defer close(sent)
		s := sp.Iterate(1, func(x int) int { return x + 1 })
		for i := 0; i < 5; i++ {
			tx <- s.Head()
			s, _ = s.Tail()
		}
	}()

	result, err := sp.Eval(p, stream)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if result.Head() != n {
		t.Fatalf("Head() = %d, want %d", result.Head(), n)
	}

	resultTail, err := result.Tail()
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if resultTail.Head() != n {
		t.Fatalf("second value = %d, want %d", resultTail.Head(), n)
	}

	rest, err := observe.Log(context.Background(), discardLogger(), resultTail, 3)
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if rest.Head() != n*4 {
		t.Errorf("value after the logged ones = %d, want %d", rest.Head(), n*4)
	}
	<-sent
}

type event struct {
	kind keyEvent
	key  byte
}

type keyEvent int

const (
	shiftDepressed keyEvent = iota
	shiftReleased
	keyPressed
)

// keyboard tracks the shift key. Every key press emits whether it was a
// real key (code > 0) and records it with a sign for the shift state;
// shift edges that change the state emit true.
type keyboard struct {
	typed []string
}

func (kb *keyboard) action(sign string, code byte) bool {
	if code == 0 {
		return false
	}
	kb.typed = append(kb.typed, sign+string('0'+code))
	return true
}

func (kb *keyboard) normal() sp.Processor[event, bool] {
	return sp.Get(func(e event) sp.Processor[event, bool] {
		switch e.kind {
		case shiftDepressed:
			return sp.Put(true, kb.shifted)
		case shiftReleased:
			return kb.normal()
		default:
			return sp.Put(kb.action("+", e.key), kb.normal)
		}
	})
}

func (kb *keyboard) shifted() sp.Processor[event, bool] {
	return sp.Get(func(e event) sp.Processor[event, bool] {
		switch e.kind {
		case shiftDepressed:
			return kb.shifted()
		case shiftReleased:
			return sp.Put(true, kb.normal)
		default:
			return sp.Put(kb.action("-", e.key), kb.shifted)
		}
	})
}

func TestEvents(t *testing.T) {
	key := func(c byte) event { return event{kind: keyPressed, key: c} }
	events := []event{
		key(1),
		{kind: shiftDepressed},
		key(1),
		key(5),
		{kind: shiftReleased},
		key(5),
		key(7),
		{kind: shiftReleased},
		key(3),
		{kind: shiftDepressed},
		key(0),
		key(0),
	}

	tx, stream := sp.Channel(len(events), event{kind: shiftReleased})
	go func() {
		for _, e := range events {
			tx <- e
		}
	}()

	kb := &keyboard{}
	body, err := sp.Eval(kb.normal(), stream)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	outputs := 0
	for body.Head() {
		outputs++
		if body, err = body.Tail(); err != nil {
			t.Fatalf("Tail() error = %v", err)
		}
	}

	if outputs != 9 {
		t.Errorf("true outputs = %d, want 9", outputs)
	}
	if want := []string{"+1", "-1", "-5", "+5", "+7", "+3"}; !slices.Equal(kb.typed, want) {
		t.Errorf("typed = %v, want %v", kb.typed, want)
	}
}

func TestDemands(t *testing.T) {
	const (
		reference = 12.077_005_857
		eps       = 0.001

		stepsSqrt2 = 10
		stepsPi    = 5
		stepsExp   = 10
	)

	type unit = struct{}

	// square root of 2 by the Babylonian method
	var babylon2 func(x float64) sp.Processor[unit, float64]
	babylon2 = func(x float64) sp.Processor[unit, float64] {
		return sp.Put(x, func() sp.Processor[unit, float64] { return babylon2((x + 2/x) / 2) })
	}

	// pi by the Bailey-Borwein-Plouffe formula
	var bbp func(partial float64, k int) sp.Processor[unit, float64]
	bbp = func(partial float64, k int) sp.Processor[unit, float64] {
		term := func(k int) float64 {
			kf := float64(k)
			return 1 / math.Pow(16, kf) * (4/(8*kf+1) - 2/(8*kf+4) - 1/(8*kf+5) - 1/(8*kf+6))
		}
		return sp.Put(partial, func() sp.Processor[unit, float64] { return bbp(partial+term(k), k+1) })
	}

	// Euler's number
	var euler func(partial float64, k, kfac int) sp.Processor[unit, float64]
	euler = func(partial float64, k, kfac int) sp.Processor[unit, float64] {
		return sp.Put(partial, func() sp.Processor[unit, float64] {
			return euler(partial+1/float64(kfac), k+1, kfac*(k+1))
		})
	}

	ctx := context.Background()
	logger := discardLogger()
	approx := func(p sp.Processor[unit, float64], steps int) float64 {
		t.Helper()
		out, err := sp.Eval(p, sp.Constant(unit{}))
		if err != nil {
			t.Fatalf("Eval() error = %v", err)
		}
		rest, err := observe.Log(ctx, logger, out, steps)
		if err != nil {
			t.Fatalf("Log() error = %v", err)
		}
		return rest.Head()
	}

	sqrt2 := approx(babylon2(1), stepsSqrt2)
	pi := approx(bbp(0, 0), stepsPi)
	e := approx(euler(1, 1, 1), stepsExp)

	if got := sqrt2 * pi * e; math.Abs(got-reference) >= eps {
		t.Errorf("sqrt2*pi*e = %v, want %v within %v", got, reference, eps)
	}
}

func TestLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping load test in short mode")
	}
	const n = 8

	factorial := func(n int) int {
		acc := 1
		for i := 2; i <= n; i++ {
			acc *= i
		}
		return acc
	}

	p := sp.Then(
		sp.Then(filter.Filter(func(x int) bool { return x%2 == 0 }), sp.Map(factorial)),
		sp.Map(func(x int) int { return x + 1 }),
	)
	cycle := sp.Iterate(0, func(x int) int { return (x + 1) % n })

	out, err := sp.Eval(p, cycle)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	rest, err := sp.Drop(out, factorial(n))
	if err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	// evens 0, 2, 4, 6 repeat, so the value after n! outputs is the first again
	if want := factorial(0) + 1; rest.Head() != want {
		t.Errorf("Head() = %d, want %d", rest.Head(), want)
	}
}
