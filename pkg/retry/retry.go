// Package retry wraps data-access calls with bounded exponential backoff.
// Only errors accepted by the injected predicate are retried; everything
// else is returned to the caller immediately.
package retry

import (
	"context"
	"time"
)

// Config controls retry behavior.
type Config struct {
	MaxAttempts int           // total attempts, including the first
	Backoff     time.Duration // initial delay, doubled after each failure
}

// DefaultConfig mirrors the retry policy of the data-access layer:
// three attempts, starting at one second.
var DefaultConfig = Config{MaxAttempts: 3, Backoff: time.Second}

// Do runs op, retrying while retryable(err) is true, up to cfg.MaxAttempts.
// The delay doubles after each failed attempt. Do returns early if ctx is
// done while waiting.
func Do(ctx context.Context, cfg Config, retryable func(error) bool, op func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var err error
	delay := cfg.Backoff
	for attempt := 1; ; attempt++ {
		err = op(ctx)
		if err == nil || attempt >= cfg.MaxAttempts || retryable == nil || !retryable(err) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
