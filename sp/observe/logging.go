package observe

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lguimbarda/min-sp/sp/core"
)

// Logging returns an option logging every transition to logger at Debug
// level. Failures other than exhaustion are logged at Warn.
func Logging(logger *slog.Logger) core.EvalOption {
	if logger == nil {
		logger = slog.Default()
	}
	ctx := context.Background()
	return core.WithHooks(core.Hooks{
		OnGet: func() {
			logger.Log(ctx, slog.LevelDebug, "transition", "phase", core.PhaseGet.String())
		},
		OnPut: func() {
			logger.Log(ctx, slog.LevelDebug, "transition", "phase", core.PhasePut.String())
		},
		OnFail: func(err error) {
			if core.IsExhausted(err) {
				logger.Log(ctx, slog.LevelDebug, "input exhausted")
				return
			}
			logger.Log(ctx, slog.LevelWarn, "evaluation failed", "error", err)
		},
	})
}

// Log logs the first n values of s at Info level, one record per value with
// its index, and returns the stream of the values after them. If s runs out
// first, Log returns the exhaustion error once every value has been logged.
func Log[T any](ctx context.Context, logger *slog.Logger, s core.Stream[T], n int) (core.Stream[T], error) {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "stream value", "index", i, "value", s.Head())
		next, err := s.Tail()
		if err != nil {
			return nil, err
		}
		s = next
	}
	return s, nil
}

// Print writes the first n values of s to w, one per line. It stops early
// without error when s is exhausted.
func Print[T any](w io.Writer, s core.Stream[T], n int) error {
	return walk(s, n, func(_ int, v T) error {
		_, err := fmt.Fprintln(w, v)
		return err
	})
}

// walk visits up to n values, advancing s only between visits.
func walk[T any](s core.Stream[T], n int, visit func(int, T) error) error {
	for i := 0; i < n; i++ {
		if err := visit(i, s.Head()); err != nil {
			return err
		}
		if i == n-1 {
			return nil
		}
		next, err := s.Tail()
		if err != nil {
			if core.IsExhausted(err) {
				return nil
			}
			return err
		}
		s = next
	}
	return nil
}
