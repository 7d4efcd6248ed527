package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aura_server/observability"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds how often a transaction that lost a race is re-run
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     5,
	InitialInterval: 10 * time.Millisecond,
	MaxInterval:     200 * time.Millisecond,
}

// Run calls fn until it succeeds, fails with anything other than
// ErrTxnConflict, or the attempts run out. fn must re-read whatever state
// it depends on every time it is called.
func (p RetryPolicy) Run(ctx context.Context, operation string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = 0

	tries := 0
	err := backoff.Retry(func() error {
		tries++
		err := fn()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrTxnConflict):
			observability.IncConflict(operation)
			return err
		default:
			return backoff.Permanent(err)
		}
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx))

	if errors.Is(err, ErrTxnConflict) {
		return fmt.Errorf("%s gave up after %d attempts: %w", operation, tries, ErrConcurrentMatchConflict)
	}
	return err
}
