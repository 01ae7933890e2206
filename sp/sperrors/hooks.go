package sperrors

import (
	"sync"

	"github.com/lguimbarda/min-sp/sp/core"
)

// Collector collects evaluation failures for later inspection. Exhaustion
// is not a failure and is never collected.
type Collector struct {
	mu        sync.Mutex
	errors    []error
	predicate func(error) bool
	maxErrors int // 0 = unlimited
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithPredicate filters which errors to collect.
func WithPredicate(predicate func(error) bool) CollectorOption {
	return func(c *Collector) {
		c.predicate = predicate
	}
}

// WithMaxErrors limits the number of errors to collect.
func WithMaxErrors(max int) CollectorOption {
	return func(c *Collector) {
		c.maxErrors = max
	}
}

// NewCollector creates a Collector.
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		predicate: func(error) bool { return true },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option returns the EvalOption feeding the collector.
func (c *Collector) Option() core.EvalOption {
	return core.WithHooks(core.Hooks{OnFail: c.add})
}

func (c *Collector) add(err error) {
	if core.IsExhausted(err) || !c.predicate(err) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxErrors > 0 && len(c.errors) >= c.maxErrors {
		return
	}
	c.errors = append(c.errors, err)
}

// Errors returns a copy of all collected errors.
func (c *Collector) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]error, len(c.errors))
	copy(result, c.errors)
	return result
}

// Count returns the number of collected errors.
func (c *Collector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors)
}
