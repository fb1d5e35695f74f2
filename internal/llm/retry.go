package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures with capped exponential
// backoff and ±20% jitter.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

type retryPolicy int

const (
	never retryPolicy = iota
	once              // malformed output: worth one more try
	always
)

// policyFor classifies err. Cancellation and truncation are final; bad
// output gets a single retry; anything else is assumed transient.
func policyFor(err error) retryPolicy {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return never
	}
	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return never
	}
	var invalid *ErrInvalidResponse
	if errors.As(err, &invalid) {
		return once
	}
	return always
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var err error
	invalidLeft := 1

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		var resp *Response
		if resp, err = r.inner.Generate(ctx, req); err == nil {
			return resp, nil
		}

		switch policyFor(err) {
		case never:
			return nil, err
		case once:
			if invalidLeft == 0 {
				return nil, err
			}
			invalidLeft--
		}
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		timer := time.NewTimer(r.backoff(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, err
}

// backoff is the wait before the next attempt. A provider-supplied
// Retry-After wins over the computed delay.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	base := math.Min(
		float64(r.config.InitialWait)*math.Pow(r.config.Multiplier, float64(attempt)),
		float64(r.config.MaxWait),
	)
	wait := base * (1 + 0.2*(2*rand.Float64()-1))
	return time.Duration(math.Max(wait, 0))
}
