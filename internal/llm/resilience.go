package llm

import (
	"context"
	"strings"
	"time"
)

// ResilienceOptions configures the per-call wrapper every provider is
// passed through before being handed to the orchestrator.
type ResilienceOptions struct {
	// TimeoutSeconds bounds the whole call, including retries. Zero uses
	// spec's 60s default.
	TimeoutSeconds int
	// MaxAttempts bounds retries on a retryable failure. Zero means 3.
	MaxAttempts int
	// RetryBackoff is the delay before each retry (no jitter — provider
	// calls are already rate-limit-aware via RateLimiter).
	RetryBackoff time.Duration
}

func (o ResilienceOptions) timeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

func (o ResilienceOptions) maxAttempts() int {
	if o.MaxAttempts <= 0 {
		return 3
	}
	return o.MaxAttempts
}

func (o ResilienceOptions) backoff() time.Duration {
	if o.RetryBackoff <= 0 {
		return 500 * time.Millisecond
	}
	return o.RetryBackoff
}

// nonRetryableMarkers are substrings of an error message that short-
// circuit the retry loop — auth failures and unknown-model errors won't
// succeed on a second attempt.
var nonRetryableMarkers = []string{"401", "403", "model not found", "model-not-found", "invalid api key", "unauthorized"}

func isRetryable(errMsg string) bool {
	lower := strings.ToLower(errMsg)
	for _, marker := range nonRetryableMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// resilientClient wraps an inner Client with total-deadline timeout,
// bounded retry on retryable failures, rate-limiter cooperation, and
// orchestrator-level circuit breaker bookkeeping — spec's "every
// provider send is wrapped with" list, composed in that order: timeout
// outermost, then retry, then the breaker recording the final verdict.
type resilientClient struct {
	inner   Client
	opts    ResilienceOptions
	breaker *ProviderCircuitBreaker
	limiter *RateLimiter
}

// Wrap composes the resilience stack around a raw provider client. Every
// provider factory should return a Wrap()-ed client, never the raw one,
// so the orchestrator can assume uniform retry/timeout/breaker behavior
// regardless of provider.
func Wrap(inner Client, opts ResilienceOptions, breaker *ProviderCircuitBreaker, limiter *RateLimiter) Client {
	return &resilientClient{inner: inner, opts: opts, breaker: breaker, limiter: limiter}
}

func (c *resilientClient) Name() string { return c.inner.Name() }

func (c *resilientClient) Send(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.timeout())
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.inner.Name()); err != nil {
			return Response{Success: false, Provider: c.inner.Name(), ErrorMessage: err.Error()}, nil
		}
	}

	var last Response
	for attempt := 1; attempt <= c.opts.maxAttempts(); attempt++ {
		start := time.Now()
		resp, err := c.inner.Send(ctx, req)
		if err != nil {
			// Programmer error from the provider, not a transport
			// failure — propagate rather than retry.
			return resp, err
		}
		resp.DurationMS = time.Since(start).Milliseconds()
		last = resp

		if resp.Success {
			if c.breaker != nil {
				c.breaker.RecordSuccess(c.inner.Name())
			}
			return resp, nil
		}

		if c.breaker != nil {
			c.breaker.RecordFailure(c.inner.Name())
		}
		if !isRetryable(resp.ErrorMessage) || attempt == c.opts.maxAttempts() {
			return resp, nil
		}

		select {
		case <-time.After(c.opts.backoff()):
		case <-ctx.Done():
			return last, nil
		}
	}
	return last, nil
}
