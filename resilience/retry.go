package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	apperrors "github.com/kbukum/scribe/errors"
)

// Defaults for transcription requests: three retries after the first
// attempt, waiting 1s, 2s and 4s.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
	DefaultFactor     = 2.0
)

// RetryPolicy configures retry behavior.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
	// Factor multiplies the delay after every retry.
	Factor float64
	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration
	// Jitter spreads each delay by up to ±Jitter of its value (0.0 to 1.0).
	Jitter float64
	// RetryIf determines if an error should be retried.
	RetryIf func(error) bool
	// OnRetry is called before each wait with the attempt that just failed.
	OnRetry func(attempt int, err error, delay time.Duration)
	// Sleep waits for d or until ctx ends. Tests replace it to observe delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the policy used for remote transcription.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		Factor:     DefaultFactor,
		RetryIf:    IsTransient,
	}
}

// IsTransient retries errors whose AppError code is in the transient class
// and never retries context cancellation.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return apperrors.IsRetryable(err)
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.Factor <= 0 {
		p.Factor = DefaultFactor
	}
	if p.RetryIf == nil {
		p.RetryIf = IsTransient
	}
	if p.Sleep == nil {
		p.Sleep = SleepContext
	}
	return p
}

// Delay returns the wait before retry n (1-based), without jitter.
func (p RetryPolicy) Delay(n int) time.Duration {
	p = p.withDefaults()
	d := float64(p.BaseDelay) * math.Pow(p.Factor, float64(n-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

func (p RetryPolicy) jittered(n int) time.Duration {
	d := p.Delay(n)
	if p.Jitter <= 0 {
		return d
	}
	spread := float64(d) * math.Min(p.Jitter, 1)
	j := time.Duration(float64(d) + (rand.Float64()*2-1)*spread)
	if j < 0 {
		return 0
	}
	return j
}

// Retry executes fn until it succeeds, returns a non-retryable error, or the
// retries are exhausted. After exhaustion the last error is returned
// unchanged. If ctx ends before an attempt or during a wait, ctx.Err() is
// returned immediately.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	p = p.withDefaults()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !p.RetryIf(err) || attempt > p.MaxRetries {
			return zero, err
		}

		delay := p.jittered(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
		if waitErr := p.Sleep(ctx, delay); waitErr != nil {
			return zero, waitErr
		}
	}
}

// SleepContext waits for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
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
