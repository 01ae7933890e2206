package observe

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"

	"github.com/lguimbarda/min-sp/sp/core"
)

// Otel returns an option recording evaluation transitions as OpenTelemetry
// counters created from meter: sp.gets, sp.puts, sp.failures and
// sp.exhaustions. Exhaustion is counted apart from other failures, as it
// is the normal end of a bounded stream.
func Otel(meter metric.Meter, opts ...metric.AddOption) (core.EvalOption, error) {
	gets, err := meter.Int64Counter("sp.gets", metric.WithDescription("input elements consumed by Get transitions"))
	if err != nil {
		return nil, fmt.Errorf("observe: create gets counter: %w", err)
	}
	puts, err := meter.Int64Counter("sp.puts", metric.WithDescription("outputs produced by Put transitions"))
	if err != nil {
		return nil, fmt.Errorf("observe: create puts counter: %w", err)
	}
	failures, err := meter.Int64Counter("sp.failures", metric.WithDescription("evaluation failures other than exhaustion"))
	if err != nil {
		return nil, fmt.Errorf("observe: create failures counter: %w", err)
	}
	exhaustions, err := meter.Int64Counter("sp.exhaustions", metric.WithDescription("evaluations ended by an exhausted input"))
	if err != nil {
		return nil, fmt.Errorf("observe: create exhaustions counter: %w", err)
	}

	ctx := context.Background()
	return core.WithHooks(core.Hooks{
		OnGet: func() { gets.Add(ctx, 1, opts...) },
		OnPut: func() { puts.Add(ctx, 1, opts...) },
		OnFail: func(err error) {
			if core.IsExhausted(err) {
				exhaustions.Add(ctx, 1, opts...)
				return
			}
			failures.Add(ctx, 1, opts...)
		},
	}), nil
}

// PrometheusMetrics holds the collectors registered by Prometheus.
type PrometheusMetrics struct {
	Transitions *prometheus.CounterVec // by phase: get, put
	Failures    *prometheus.CounterVec // by kind: exhausted, panic, error
}

// Option returns the EvalOption feeding the collectors.
func (m *PrometheusMetrics) Option() core.EvalOption {
	gets := m.Transitions.WithLabelValues(core.PhaseGet.String())
	puts := m.Transitions.WithLabelValues(core.PhasePut.String())
	return core.WithHooks(core.Hooks{
		OnGet:  gets.Inc,
		OnPut:  puts.Inc,
		OnFail: func(err error) { m.Failures.WithLabelValues(failureKind(err)).Inc() },
	})
}

// Prometheus creates the transition and failure counters under namespace
// and registers them with reg. If reg already holds identical collectors,
// for example from an earlier call with the same namespace, those are
// reused.
func Prometheus(reg prometheus.Registerer, namespace string) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "transitions_total",
			Help:      "Total number of processor transitions by phase",
		}, []string{"phase"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "failures_total",
			Help:      "Total number of failed evaluations by kind",
		}, []string{"kind"}),
	}

	var err error
	if m.Transitions, err = register(reg, m.Transitions); err != nil {
		return nil, err
	}
	if m.Failures, err = register(reg, m.Failures); err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("observe: register collector: %w", err)
	}
	return c, nil
}

func failureKind(err error) string {
	var panicErr core.ErrPanic
	switch {
	case core.IsExhausted(err):
		return "exhausted"
	case errors.As(err, &panicErr):
		return "panic"
	default:
		return "error"
	}
}
