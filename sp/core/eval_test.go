package core

import (
	"errors"
	"testing"
)

func TestEval_Map(t *testing.T) {
	negate := Map(func(b bool) bool { return !b })

	out, err := Eval(negate, repeat(true))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	for i, v := range take(t, out, 10) {
		if v {
			t.Fatalf("value %d = true, want false", i)
		}
	}
}

func TestEval_MapLaw(t *testing.T) {
	items := []int{3, 1, 4, 1, 5, 9, 2, 6}
	f := func(n int) int { return n*n - 1 }

	out, err := Eval(Map(f), fromSlice(nil, items...))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	got := take(t, out, len(items))
	for i, v := range items {
		if got[i] != f(v) {
			t.Errorf("output %d = %d, want f(%d) = %d", i, got[i], v, f(v))
		}
	}
}

func TestEval_ExhaustionOnFourthGet(t *testing.T) {
	c := &calls{}
	gets := 0
	in := fromSlice(c, 1, 2, 3)
	out, err := Eval(Map(func(n int) int { return n * 10 }), in,
		WithHooks(Hooks{OnGet: func() { gets++ }}))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}

	var got []int
	for {
		got = append(got, out.Head())
		if c.tails != gets {
			t.Fatalf("after %d outputs: %d tails for %d gets", len(got), c.tails, gets)
		}
		out, err = out.Tail()
		if err != nil {
			break
		}
	}

	if !IsExhausted(err) {
		t.Fatalf("final error = %v, want ErrExhausted", err)
	}
	if !equal(got, []int{10, 20, 30}) {
		t.Errorf("outputs = %v, want [10 20 30]", got)
	}
	if gets != 3 || c.tails != 3 {
		t.Errorf("gets = %d, tails = %d, want 3 and 3", gets, c.tails)
	}
}

func TestEval_NotEnoughInput(t *testing.T) {
	// sums four inputs before its only output
	var sum func(n, acc int) Processor[int, int]
	sum = func(n, acc int) Processor[int, int] {
		if n == 0 {
			return Put(acc, func() Processor[int, int] { return sum(4, 0) })
		}
		return Get(func(a int) Processor[int, int] { return sum(n-1, acc+a) })
	}

	c := &calls{}
	_, err := Eval(sum(4, 0), fromSlice(c, 1, 2, 3))
	if !IsExhausted(err) {
		t.Fatalf("Eval() error = %v, want ErrExhausted", err)
	}
	if c.heads != 3 || c.tails != 3 {
		t.Errorf("heads = %d, tails = %d, want 3 and 3", c.heads, c.tails)
	}
}

func TestEval_OutputsBeforeFailureKept(t *testing.T) {
	boom := errors.New("boom")
	in := &failingStream{items: []int{1, 2}, err: boom}

	out, err := Eval(Map(func(n int) int { return n }), Stream[int](in))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if out.Head() != 1 {
		t.Fatalf("first output = %d, want 1", out.Head())
	}
	out, err = out.Tail()
	if err != nil {
		t.Fatalf("second Tail() error = %v; the element read before the failure was lost", err)
	}
	if out.Head() != 2 {
		t.Fatalf("second output = %d, want 2", out.Head())
	}
	if _, err := out.Tail(); !errors.Is(err, boom) {
		t.Errorf("third Tail() error = %v, want %v", err, boom)
	}
}

// failingStream yields its items, then fails the Tail after the last one.
type failingStream struct {
	items []int
	pos   int
	err   error
}

func (f *failingStream) Head() int { return f.items[f.pos] }

func (f *failingStream) Tail() (Stream[int], error) {
	if f.pos+1 >= len(f.items) {
		return nil, f.err
	}
	return &failingStream{items: f.items, pos: f.pos + 1, err: f.err}, nil
}

func TestEval_TailMemoized(t *testing.T) {
	c := &calls{}
	out, err := Eval(Map(func(n int) int { return n }), fromSlice(c, 1, 2, 3, 4))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}

	first, err1 := out.Tail()
	second, err2 := out.Tail()
	if err1 != nil || err2 != nil {
		t.Fatalf("Tail() errors = %v, %v", err1, err2)
	}
	if first != second {
		t.Error("Tail() returned different successors")
	}
	if c.tails != 2 {
		t.Errorf("input tails = %d, want 2 (one per Get)", c.tails)
	}

	// walking the same prefix twice consumes nothing more
	for pass := 0; pass < 2; pass++ {
		s := out
		for i := 0; i < 3; i++ {
			if s, err = s.Tail(); err != nil {
				t.Fatalf("pass %d: Tail() error = %v", pass, err)
			}
		}
	}
	if c.tails != 4 {
		t.Errorf("input tails = %d, want 4", c.tails)
	}
}

func TestEval_IdempotentHead(t *testing.T) {
	c := &calls{}
	out, err := Eval(Map(func(n int) int { return n + 1 }), fromSlice(c, 1, 2))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	tails := c.tails
	for i := 0; i < 5; i++ {
		if out.Head() != 2 {
			t.Fatalf("Head() = %d, want 2", out.Head())
		}
	}
	if c.tails != tails {
		t.Errorf("Head() advanced the input")
	}
}

func TestEval_PutOnlyReadsNothing(t *testing.T) {
	var count func(n int) Processor[int, int]
	count = func(n int) Processor[int, int] {
		return Put(n, func() Processor[int, int] { return count(n + 1) })
	}

	c := &calls{}
	out, err := Eval(count(0), fromSlice(c, 99))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if got := take(t, out, 4); !equal(got, []int{0, 1, 2, 3}) {
		t.Errorf("got %v, want [0 1 2 3]", got)
	}
	if c.heads != 0 || c.tails != 0 {
		t.Errorf("heads = %d, tails = %d, want no reads", c.heads, c.tails)
	}
}

func TestEval_PanicRecovered(t *testing.T) {
	var failed error
	sp := Map(func(n int) int {
		if n == 2 {
			panic("bad input")
		}
		return n
	})

	out, err := Eval(sp, fromSlice(nil, 1, 2, 3), WithHooks(Hooks{OnFail: func(err error) { failed = err }}))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}

	_, err = out.Tail()
	var panicErr ErrPanic
	if !errors.As(err, &panicErr) {
		t.Fatalf("Tail() error = %v, want ErrPanic", err)
	}
	if panicErr.Value != "bad input" {
		t.Errorf("panic value = %v, want %q", panicErr.Value, "bad input")
	}
	if !errors.As(failed, &panicErr) {
		t.Errorf("OnFail got %v, want the panic", failed)
	}

	_, again := out.Tail()
	if again == nil || again.Error() != err.Error() {
		t.Errorf("second Tail() error = %v, want the same failure", again)
	}
}

func TestEval_Malformed(t *testing.T) {
	sp := Get(func(int) Processor[int, int] { return Processor[int, int]{} })
	if _, err := Eval(sp, repeat(1)); !errors.Is(err, ErrMalformed) {
		t.Errorf("Eval() error = %v, want ErrMalformed", err)
	}
	if _, err := Eval(Processor[int, int]{}, repeat(1)); !errors.Is(err, ErrMalformed) {
		t.Errorf("Eval(zero) error = %v, want ErrMalformed", err)
	}
}

func TestEval_Hooks(t *testing.T) {
	var events []string
	record := func(prefix string) Hooks {
		return Hooks{
			OnGet:  func() { events = append(events, prefix+"get") },
			OnPut:  func() { events = append(events, prefix+"put") },
			OnFail: func(error) { events = append(events, prefix+"fail") },
		}
	}

	out, err := Eval(Map(func(n int) int { return n }), fromSlice(nil, 1),
		WithHooks(record("a:")), nil, WithHooks(record("b:")))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if _, err := out.Tail(); !IsExhausted(err) {
		t.Fatalf("Tail() error = %v, want ErrExhausted", err)
	}

	want := []string{"a:get", "b:get", "a:put", "b:put", "a:fail", "b:fail"}
	if !equal(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestEval_LongGetChain(t *testing.T) {
	const skipped = 200000
	var skip func(n int) Processor[int, int]
	skip = func(n int) Processor[int, int] {
		return Get(func(a int) Processor[int, int] {
			if n > 0 {
				return skip(n - 1)
			}
			return Emit(a, skip(skipped))
		})
	}

	out, err := Eval(skip(skipped), repeat(7))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if got := take(t, out, 3); !equal(got, []int{7, 7, 7}) {
		t.Errorf("got %v, want [7 7 7]", got)
	}
}

func TestEval_NilStreamPanics(t *testing.T) {
	mustPanic(t, "Eval(nil)", func() {
		Eval[int, int](Map(func(n int) int { return n }), nil)
	})
}

func TestIdentity(t *testing.T) {
	out, err := Eval(Identity[string](), fromSlice(nil, "a", "b"))
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if got := take(t, out, 2); !equal(got, []string{"a", "b"}) {
		t.Errorf("got %v, want [a b]", got)
	}
}
