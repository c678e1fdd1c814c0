// Package retry wraps fallible operations with a bounded retry policy.
// Only failures classified as retryable by errdefs.IsRetryable consume
// extra attempts; permanent failures return immediately, and the last
// error always propagates unchanged once attempts run out.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/arclabs561/runctl/pkg/errdefs"
)

const (
	defaultInitialDelay = 100 * time.Millisecond
	defaultMaxDelay     = 30 * time.Second

	defaultMaxAttempts  = 3
	cloudAPIMaxAttempts = 5
)

// Policy executes an operation, possibly more than once.
type Policy interface {
	Execute(ctx context.Context, op func(ctx context.Context) error) error
}

// NoRetry runs the operation exactly once and returns its result unchanged.
type NoRetry struct{}

func (NoRetry) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	return op(ctx)
}

// ExponentialBackoff retries transient failures with exponentially
// growing, jittered delays, capped at maxDelay.
type ExponentialBackoff struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// NewExponentialBackoff returns a policy allowing at most maxAttempts
// executions of the operation.
func NewExponentialBackoff(maxAttempts int) *ExponentialBackoff {
	return &ExponentialBackoff{
		maxAttempts:  maxAttempts,
		initialDelay: defaultInitialDelay,
		maxDelay:     defaultMaxDelay,
	}
}

// Default returns the general-purpose policy (3 attempts).
func Default() *ExponentialBackoff {
	return NewExponentialBackoff(defaultMaxAttempts)
}

// ForCloudAPI returns the policy sized for cloud API calls (5 attempts),
// where throttling makes transient failures common.
func ForCloudAPI() *ExponentialBackoff {
	return NewExponentialBackoff(cloudAPIMaxAttempts)
}

func (p *ExponentialBackoff) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	logger := zerolog.Ctx(ctx)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.initialDelay
	bo.MaxInterval = p.maxDelay
	bo.MaxElapsedTime = 0
	bo.Reset()

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info().Int("attempt", attempt).Msg("operation succeeded after retry")
			}
			return nil
		}

		if !errdefs.IsRetryable(err) {
			logger.Warn().Err(err).Msg("non-retryable error, aborting")
			return err
		}

		lastErr = err
		if attempt == p.maxAttempts {
			logger.Warn().Int("max_attempts", p.maxAttempts).Err(err).Msg("retry budget exhausted")
			break
		}

		wait := bo.NextBackOff()
		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", p.maxAttempts).
			Dur("backoff", wait).
			Msg("transient failure, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return lastErr
}

// Do runs a value-returning operation under the given policy.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Execute(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
