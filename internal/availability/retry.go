package availability

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Retry defaults: three attempts, waiting 1s then 2s between them.
const (
	DefaultMaxRetries = 3
	DefaultRetryBase  = time.Second

	maxRetryInterval = time.Hour
)

// Retrier retries store reads with exponential backoff. The delay before
// attempt n+1 is base * 2^(n-1); there is no delay after the last attempt.
type Retrier struct {
	maxRetries int
	base       time.Duration
}

// NewRetrier creates a retry policy. Non-positive values fall back to defaults.
func NewRetrier(maxRetries int, base time.Duration) *Retrier {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if base <= 0 {
		base = DefaultRetryBase
	}
	return &Retrier{maxRetries: maxRetries, base: base}
}

// WithRetry runs op up to maxRetries times. Permission failures are returned
// after the first attempt. When every attempt fails the last error is returned
// unchanged; there is no fallback result.
func WithRetry[T any](ctx context.Context, r *Retrier, maxRetries int, op func() (T, error)) (T, error) {
	if r == nil {
		r = NewRetrier(0, 0)
	}
	if maxRetries <= 0 {
		maxRetries = r.maxRetries
	}

	policy := &backoff.ExponentialBackOff{
		InitialInterval:     r.base,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         maxRetryInterval,
	}

	attempt := 0
	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		res, opErr := op()
		if opErr != nil && IsPermissionError(opErr) {
			log.Printf("Permission failure on attempt %d, not retrying: %v", attempt, opErr)
			return res, backoff.Permanent(opErr)
		}
		return res, opErr
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(maxRetries)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Printf("Attempt %d/%d failed, retrying in %s: %v", attempt, maxRetries, next, err)
		}),
	)

	// Retry hands back the permanent wrapper when the attempt limit is hit on
	// the same call; callers always see the original error.
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	return result, err
}
