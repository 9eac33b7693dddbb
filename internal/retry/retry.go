// Package retry runs operations against remote services with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrMaxRetries is returned when every attempt failed.
var ErrMaxRetries = errors.New("max retries exceeded")

// Options configures Do. Zero fields take their defaults.
type Options struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// permanent marks an error that must not be retried.
type permanent struct {
	err error
}

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent wraps err so Do returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return &permanent{err: err}
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}

	if o.InitialDelay <= 0 {
		o.InitialDelay = 200 * time.Millisecond
	}

	if o.MaxDelay <= 0 {
		o.MaxDelay = 10 * time.Second
	}

	if o.Multiplier <= 0 {
		o.Multiplier = 2
	}

	return o
}

// Do calls op until it succeeds, returns a Permanent error, the attempts run
// out or ctx is done.
func Do(ctx context.Context, opts Options, op func(ctx context.Context) error) error {
	opts = opts.withDefaults()
	delay := opts.InitialDelay

	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		var p *permanent
		if errors.As(err, &p) {
			return p.err
		}

		if attempt == opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		slog.Warn("operation failed, retrying",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = min(time.Duration(float64(delay)*opts.Multiplier), opts.MaxDelay)
	}
}
