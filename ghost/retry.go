package ghost

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AttemptObserver is notified after every attempt made by a Retrier
type AttemptObserver interface {
	ObserveGhostAttempt(operation string, err error)
}

// Retrier runs an operation up to MaxAttempts times, waiting
// BaseDelay*attempt between attempts. The backoff is linear and every error
// is retried the same way.
type Retrier struct {
	maxAttempts int
	baseDelay   time.Duration
	logger      *zap.Logger
	observer    AttemptObserver
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a Retrier. maxAttempts below 1 is treated as 1.
func NewRetrier(maxAttempts int, baseDelay time.Duration, logger *zap.Logger) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrier{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
		sleep:       sleepContext,
	}
}

// WithObserver attaches an attempt observer and returns r
func (r *Retrier) WithObserver(o AttemptObserver) *Retrier {
	r.observer = o
	return r
}

// MaxAttempts returns the configured attempt bound
func (r *Retrier) MaxAttempts() int {
	return r.maxAttempts
}

// Do runs fn until it succeeds or attempts are exhausted
func (r *Retrier) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	_, err := Retry(ctx, r, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Retry runs fn under r and returns its first successful result. Once
// attempts are exhausted the last error is returned as is. If ctx is done
// while waiting, ctx.Err() is returned.
func Retry[T any](ctx context.Context, r *Retrier, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		result, err := fn(ctx)
		if r.observer != nil {
			r.observer.ObserveGhostAttempt(operation, err)
		}
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == r.maxAttempts {
			break
		}

		wait := r.baseDelay * time.Duration(attempt)
		r.logger.Warn("ghost call failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if err := r.sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
