package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"salesdash/pkg/metrics"
)

// FatalError stops retrying immediately.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string { return e.err.Error() }
func (e *FatalError) Unwrap() error { return e.err }

func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{err: err}
}

func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		MaxElapsedTime:  5 * time.Minute,
	}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		exp.Multiplier = p.Multiplier
	}
	exp.MaxElapsedTime = p.MaxElapsedTime

	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Do runs fn until it succeeds, returns a FatalError, or the policy is
// exhausted. Every retry after the first attempt is counted under operation.
func Do(ctx context.Context, operation string, policy Policy, fn func() error) error {
	return DoWithCallback(ctx, operation, policy, fn, nil)
}

func DoWithCallback(ctx context.Context, operation string, policy Policy, fn func() error, onRetry func(attempt int, err error, next time.Duration)) error {
	attempt := 0
	op := func() error {
		attempt++
		if attempt > 1 {
			metrics.IncRetryAttempt(operation)
		}
		err := fn()
		if err != nil && IsFatal(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var notify backoff.Notify
	if onRetry != nil {
		notify = func(err error, next time.Duration) {
			onRetry(attempt, err, next)
		}
	}

	err := backoff.RetryNotify(op, policy.backOff(ctx), notify)
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe.err
	}
	return err
}
