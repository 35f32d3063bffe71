package ghost

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSleeper struct {
	waits []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

type countingObserver struct {
	failures  int
	successes int
}

func (o *countingObserver) ObserveGhostAttempt(_ string, err error) {
	if err != nil {
		o.failures++
		return
	}
	o.successes++
}

func newTestRetrier(maxAttempts int, base time.Duration) (*Retrier, *recordingSleeper) {
	sleeper := &recordingSleeper{}
	r := NewRetrier(maxAttempts, base, zap.NewNop())
	r.sleep = sleeper.sleep
	return r, sleeper
}

func TestRetry_SucceedsAfterTwoFailures(t *testing.T) {
	r, sleeper := newTestRetrier(3, time.Second)
	observer := &countingObserver{}
	r.WithObserver(observer)

	calls := 0
	result, err := Retry(context.Background(), r, "test", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("temporary failure")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.waits)
	assert.Equal(t, 2, observer.failures)
	assert.Equal(t, 1, observer.successes)
}

func TestRetry_ReturnsLastErrorUnchanged(t *testing.T) {
	r, sleeper := newTestRetrier(3, 1000*time.Millisecond)

	calls := 0
	var errs []error
	_, err := Retry(context.Background(), r, "test", func(ctx context.Context) (int, error) {
		calls++
		e := errors.New("failure")
		errs = append(errs, e)
		return 0, e
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Same(t, errs[len(errs)-1], err)
	assert.Equal(t, []time.Duration{1000 * time.Millisecond, 2000 * time.Millisecond}, sleeper.waits)
}

func TestRetry_FirstAttemptSuccessDoesNotWait(t *testing.T) {
	r, sleeper := newTestRetrier(3, time.Second)

	calls := 0
	err := r.Do(context.Background(), "test", func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.waits)
}

func TestRetry_StopsWhenContextCancelled(t *testing.T) {
	r, _ := newTestRetrier(5, time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := r.Do(ctx, "test", func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("failure")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestNewRetrier_ClampsAttempts(t *testing.T) {
	r := NewRetrier(0, time.Second, nil)
	assert.Equal(t, 1, r.MaxAttempts())
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
