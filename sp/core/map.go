package core

// Map creates a Processor that applies f to each input, producing exactly
// one output per input. It answers the question: "What is done to each
// item in the stream?"
func Map[A, B any](f func(A) B) Processor[A, B] {
	if f == nil {
		panic("core: Map with nil function")
	}
	var sp Processor[A, B]
	sp = Get(func(a A) Processor[A, B] {
		return Emit(f(a), sp)
	})
	return sp
}

// Identity is Map of the identity function.
func Identity[A any]() Processor[A, A] {
	return Map(func(a A) A { return a })
}
