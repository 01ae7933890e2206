// Package sperrors provides resilience helpers for fallible sources.
//
// The evaluator itself never retries: a failing Tail is reported once and
// memoized. Recovery belongs where the data comes from, so everything here
// wraps a Reader, the function sp.Poll turns into a stream. The wrapped
// reader is still a Reader and composes with the others:
//
//	read := sperrors.Retry(ctx, 3, sperrors.ExponentialBackoff(10*time.Millisecond, time.Second), fetch)
//	s, err := sp.Poll(sperrors.FallbackValue(read, placeholder))
package sperrors

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ErrMaxRetries is returned when the maximum number of retries has been exceeded.
var ErrMaxRetries = errors.New("sperrors: max retries exceeded")

// ErrCircuitOpen is returned when a circuit breaker is in the open state.
var ErrCircuitOpen = errors.New("sperrors: circuit breaker is open")

// Reader produces the next element of a source.
type Reader[T any] func() (T, error)

// BackoffStrategy defines how to calculate delay between retries.
type BackoffStrategy func(attempt int) time.Duration

// ConstantBackoff returns a BackoffStrategy that always waits the same duration.
func ConstantBackoff(delay time.Duration) BackoffStrategy {
	return func(int) time.Duration {
		return delay
	}
}

// LinearBackoff returns a BackoffStrategy that increases delay linearly.
func LinearBackoff(initialDelay time.Duration) BackoffStrategy {
	return func(attempt int) time.Duration {
		return time.Duration(attempt+1) * initialDelay
	}
}

// ExponentialBackoff returns a BackoffStrategy that doubles delay each attempt.
// The delay is capped at maxDelay if provided (use 0 for no cap).
func ExponentialBackoff(initialDelay, maxDelay time.Duration) BackoffStrategy {
	return func(attempt int) time.Duration {
		delay := initialDelay * time.Duration(math.Pow(2, float64(attempt)))
		if maxDelay > 0 && delay > maxDelay {
			return maxDelay
		}
		return delay
	}
}

// Retry calls read up to maxRetries more times after a failure, waiting
// according to backoff (nil means no wait) between attempts. When every
// attempt fails, the error wraps both ErrMaxRetries and the last failure.
// Waiting stops early with ctx.Err() when ctx is done.
func Retry[T any](ctx context.Context, maxRetries int, backoff BackoffStrategy, read Reader[T]) Reader[T] {
	return RetryIf(ctx, maxRetries, backoff, func(error) bool { return true }, read)
}

// RetryIf is Retry limited to the failures for which shouldRetry holds.
// Other failures are returned at once, unwrapped.
func RetryIf[T any](ctx context.Context, maxRetries int, backoff BackoffStrategy, shouldRetry func(error) bool, read Reader[T]) Reader[T] {
	if read == nil || shouldRetry == nil {
		panic("sperrors: nil function")
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return func() (T, error) {
		var zero T
		var lastErr error
		for attempt := 0; attempt <= maxRetries; attempt++ {
			if attempt > 0 && backoff != nil {
				if err := sleep(ctx, backoff(attempt-1)); err != nil {
					return zero, err
				}
			}
			v, err := read()
			if err == nil {
				return v, nil
			}
			if !shouldRetry(err) {
				return zero, err
			}
			lastErr = err
		}
		return zero, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, maxRetries+1, lastErr)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Fallback replaces a failed read by the outcome of recover, which may
// supply a value or return an error of its own.
func Fallback[T any](read Reader[T], recover func(error) (T, error)) Reader[T] {
	if read == nil || recover == nil {
		panic("sperrors: nil function")
	}
	return func() (T, error) {
		v, err := read()
		if err != nil {
			return recover(err)
		}
		return v, nil
	}
}

// FallbackValue replaces every failed read by value. The resulting reader
// never fails, so a stream polling it is unbounded.
func FallbackValue[T any](read Reader[T], value T) Reader[T] {
	return Fallback(read, func(error) (T, error) { return value, nil })
}

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker guards a reader with the circuit breaker pattern.
// - failureThreshold: number of consecutive failures before opening the circuit
// - resetTimeout: duration to wait before trying half-open state
// - halfOpenSuccesses: number of successes in half-open before fully closing
type CircuitBreaker[T any] struct {
	read              Reader[T]
	failureThreshold  int
	resetTimeout      time.Duration
	halfOpenSuccesses int
	now               func() time.Time

	mu          sync.RWMutex
	state       CircuitState
	failures    int
	successes   int
	lastFailure time.Time
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration.
func NewCircuitBreaker[T any](
	read Reader[T],
	failureThreshold int,
	resetTimeout time.Duration,
	halfOpenSuccesses int,
) *CircuitBreaker[T] {
	if read == nil {
		panic("sperrors: nil reader")
	}
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	if halfOpenSuccesses <= 0 {
		halfOpenSuccesses = 1
	}

	return &CircuitBreaker[T]{
		read:              read,
		failureThreshold:  failureThreshold,
		resetTimeout:      resetTimeout,
		halfOpenSuccesses: halfOpenSuccesses,
		now:               time.Now,
		state:             CircuitClosed,
	}
}

// Read runs the reader through the circuit breaker. While the circuit is
// open it fails with ErrCircuitOpen without calling the reader.
func (cb *CircuitBreaker[T]) Read() (T, error) {
	cb.mu.Lock()
	if cb.state == CircuitOpen && cb.now().Sub(cb.lastFailure) >= cb.resetTimeout {
		cb.state = CircuitHalfOpen
		cb.successes = 0
	}
	if cb.state == CircuitOpen {
		cb.mu.Unlock()
		var zero T
		return zero, ErrCircuitOpen
	}
	cb.mu.Unlock()

	v, err := cb.read()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = cb.now()
		if cb.state == CircuitHalfOpen || cb.failures >= cb.failureThreshold {
			cb.state = CircuitOpen
		}
		return v, err
	}

	if cb.state == CircuitHalfOpen {
		cb.successes++
		if cb.successes >= cb.halfOpenSuccesses {
			cb.state = CircuitClosed
			cb.failures = 0
		}
	} else {
		cb.failures = 0
	}
	return v, nil
}

// Reader returns cb.Read as a Reader.
func (cb *CircuitBreaker[T]) Reader() Reader[T] {
	return cb.Read
}

// State returns the current circuit state.
func (cb *CircuitBreaker[T]) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}
