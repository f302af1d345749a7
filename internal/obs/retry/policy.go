package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrRetryable marks an error that a policy built here is allowed to retry.
var ErrRetryable = errors.New("retryable")

// RateLimitPolicy retries only errors wrapping ErrRetryable (HTTP 429 from WaniKani).
// attempts <= 1 means a single try.
func RateLimitPolicy(name string, attempts int, log *zap.Logger) Policy {
	return Policy{
		Name:     name,
		Attempts: attempts,
		Backoff:  ExpoJitter{Base: time.Second, Max: 30 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return errors.Is(err, ErrRetryable)
		},
		OnAttempt: func(i int, err error) {
			if log != nil && attempts > 1 {
				log.Warn("rate limited, backing off", zap.String("op", name), zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && attempts > 1 && !errors.Is(err, context.Canceled) {
				log.Error("retries exhausted", zap.String("op", name), zap.Error(err))
			}
		},
	}
}

// After is a Backoff that honours a server-provided wait when present.
type After struct {
	Fallback Backoff
	Hint     func() time.Duration
}

func (a After) Next(attempt int) time.Duration {
	if a.Hint != nil {
		if d := a.Hint(); d > 0 {
			return d
		}
	}
	if a.Fallback == nil {
		return 0
	}
	return a.Fallback.Next(attempt)
}
