package core

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrPanic wraps a recovered panic value as an error.
// This is used when a user-provided continuation panics during evaluation.
// It includes a cleaned-up stack trace that excludes internal min-sp frames.
type ErrPanic struct {
	Value any
	Stack string // Cleaned stack trace
}

func (e ErrPanic) Error() string {
	if e.Stack != "" {
		return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// NewPanicError creates an ErrPanic from a recovered value with a cleaned stack trace.
// It captures the current stack and removes internal min-sp frames to show only
// user code, making it easier to identify where the panic originated.
func NewPanicError(recovered any) ErrPanic {
	return ErrPanic{
		Value: recovered,
		Stack: cleanStack(captureStack(4)), // skip: runtime.Callers, captureStack, NewPanicError, defer func
	}
}

// captureStack returns the current stack trace as a string.
func captureStack(skip int) string {
	const maxFrames = 32
	var pcs [maxFrames]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder

	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}

	return sb.String()
}

// cleanStack removes internal min-sp frames from a stack trace,
// keeping user code and standard library frames. Test files of the
// module are kept so panics raised from tests stay visible.
func cleanStack(stack string) string {
	lines := strings.Split(stack, "\n")
	var result []string
	var skipNext bool

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !strings.HasPrefix(line, "\t") {
			if strings.Contains(line, "github.com/lguimbarda/min-sp/sp/") && !strings.Contains(line, ".Test") {
				skipNext = true
				continue
			}
			skipNext = false
		} else if skipNext {
			continue
		}

		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

// Result carries either a value or a processing error. It lets errors
// travel in-band as ordinary outputs of a processor, or across the
// channels of the concurrency runtime, without stopping the stream.
type Result[T any] struct {
	value T
	err   error
}

// Ok creates a successful Result containing the given value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err creates an error Result.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// IsValue returns true if this Result contains a successful value.
func (r Result[T]) IsValue() bool {
	return r.err == nil
}

// IsError returns true if this Result contains a processing error.
func (r Result[T]) IsError() bool {
	return r.err != nil
}

// Value returns the contained value. Returns the zero value for errors.
func (r Result[T]) Value() T {
	return r.value
}

// Error returns the contained error, or nil for values.
func (r Result[T]) Error() error {
	return r.err
}

// Unwrap returns the value and error together.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}
