// Package fetch acquires raw GloFAS forecast artifacts over FTP and places
// them in the run's local input directories, retrying until a wall-clock
// deadline expires. A failed acquisition is fatal to the run: a missing
// forecast must never silently produce a stale or empty trigger decision.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// TimeoutError reports that every fetch attempt failed before the deadline.
type TimeoutError struct {
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("glofas download failed for %.1f hours, no new dataset was found", e.Elapsed.Hours())
}

// Source is one acquisition strategy (archive or per-member grid).
type Source interface {
	Fetch(ctx context.Context) error
}

// Retrier wraps a Source with bounded-duration retry: on failure it sleeps
// the retry interval and tries again until the deadline elapses. The clock is
// injected so tests can walk through the 12-hour window instantly.
type Retrier struct {
	source   Source
	deadline time.Duration
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger

	// OnRetry, when set, is called once per failed attempt that will be
	// retried. Used to feed the retry counter metric.
	OnRetry func()
}

// NewRetrier builds a Retrier. Pass nil for the clock to use real time.
func NewRetrier(source Source, deadline, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Retrier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Retrier{
		source:   source,
		deadline: deadline,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

// Fetch attempts the source until it succeeds or the deadline passes.
// Exhaustion returns a *TimeoutError; context cancellation returns ctx.Err().
func (r *Retrier) Fetch(ctx context.Context) error {
	start := r.clock.Now()
	end := start.Add(r.deadline)

	for r.clock.Now().Before(end) {
		err := r.source.Fetch(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Error("download failed, retrying",
			"retry_in", r.interval.String(),
			"error", err,
		)
		if r.OnRetry != nil {
			r.OnRetry()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(r.interval):
		}
	}

	elapsed := r.clock.Now().Sub(start)
	r.logger.Error("download deadline exhausted", "elapsed_hours", elapsed.Hours())
	return &TimeoutError{Elapsed: elapsed}
}
