// Package benchmarks provides comparative benchmarks of min-sp against
// popular Go stream processing libraries.
package benchmarks

import (
	"context"
	"strconv"
	"testing"

	"github.com/lguimbarda/min-sp/sp"
)

// Test data sizes
const (
	SmallSize  = 100
	MediumSize = 1_000
	LargeSize  = 10_000
)

var ctx = context.Background()

// generateInts creates a slice of integers for benchmarking.
func generateInts(n int) []int {
	data := make([]int, n)
	for i := range data {
		data[i] = i
	}
	return data
}

// generateStrings creates a slice of strings for benchmarking.
func generateStrings(n int) []string {
	data := make([]string, n)
	for i := range data {
		data[i] = strconv.Itoa(i)
	}
	return data
}

// square returns the square of an integer.
func square(x int) int {
	return x * x
}

// isEven returns true if the number is even.
func isEven(x int) bool {
	return x%2 == 0
}

// add returns the sum of two integers.
func add(a, b int) int {
	return a + b
}

// run evaluates p over data and collects every output.
func run[A, B any](b *testing.B, p sp.Processor[A, B], data []A) []B {
	in, err := sp.FromSlice(data)
	if err != nil {
		b.Fatal(err)
	}
	out, err := sp.Eval(p, in)
	if sp.IsExhausted(err) {
		return nil
	}
	if err != nil {
		b.Fatal(err)
	}
	values, err := sp.Collect(out, len(data)+1)
	if err != nil {
		b.Fatal(err)
	}
	return values
}
