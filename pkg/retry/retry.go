// Package retry re-issues failing network calls a bounded number of times.
//
// Retries are immediate: no backoff delay and no jitter. Requests are assumed to
// be idempotent. Retrying a mutating call after a transient failure can apply it
// twice on the server, so only wrap calls where that is acceptable.
package retry

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultMaxAttempts is used when maxAttempts <= 0
const DefaultMaxAttempts = 3

// Option configures a retried call
type Option func(*options)

type options struct {
	name   string
	logger *zap.Logger
	notify func(attempt int, err error)
}

// WithName labels the call in logs
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger logs each failed attempt at debug level
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithNotify is called after every failed attempt, including the last one
func WithNotify(fn func(attempt int, err error)) Option {
	return func(o *options) { o.notify = fn }
}

// Do runs op until it succeeds or maxAttempts calls have failed
func Do[T any](ctx context.Context, maxAttempts int, op func(ctx context.Context) (T, error), opts ...Option) Result[T] {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	o := options{name: "request", logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	attempts := 0
	operation := func() (T, error) {
		attempts++
		value, err := op(ctx)
		if err != nil {
			o.logger.Debug("attempt failed",
				zap.String("op", o.name),
				zap.Int("attempt", attempts),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(err),
			)
			if o.notify != nil {
				o.notify(attempts, err)
			}
		}
		return value, err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(maxAttempts-1)),
		ctx,
	)

	value, err := backoff.RetryWithData(operation, b)
	if err == nil {
		return Ok(value)
	}

	f := classify(err)
	f.Attempts = attempts
	o.logger.Warn("retries exhausted",
		zap.String("op", o.name),
		zap.Int("attempts", attempts),
		zap.String("kind", string(f.Kind)),
		zap.Error(err),
	)
	return FromFailure[T](f)
}

// classify turns whatever op returned into a *Failure
func classify(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		out := *f
		return &out
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: KindCanceled, Detail: err.Error(), Err: err}
	}
	return &Failure{Kind: KindTransport, Detail: err.Error(), Err: err}
}

// Permanent marks err so Do stops retrying immediately
func Permanent(err error) error {
	return backoff.Permanent(err)
}
