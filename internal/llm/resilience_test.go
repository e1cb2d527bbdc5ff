package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRetriesRetryableFailures(t *testing.T) {
	inner := &fakeClient{name: "flaky", failTimes: 2}
	client := Wrap(inner, ResilienceOptions{RetryBackoff: 1}, nil, nil)

	resp, err := client.Send(context.Background(), Request{})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, inner.calls, "two failures then a success, three total calls")
}

func TestWrapDoesNotRetryNonRetryableFailure(t *testing.T) {
	inner := &authFailClient{}
	client := Wrap(inner, ResilienceOptions{RetryBackoff: 1}, nil, nil)

	resp, err := client.Send(context.Background(), Request{})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, 1, inner.calls, "auth failure short-circuits the retry loop")
}

func TestWrapRecordsBreakerOutcome(t *testing.T) {
	breaker := NewProviderCircuitBreaker(nil)
	inner := &fakeClient{name: "p", failTimes: 100}
	client := Wrap(inner, ResilienceOptions{MaxAttempts: 1}, breaker, nil)

	_, _ = client.Send(context.Background(), Request{})
	_, _ = client.Send(context.Background(), Request{})
	_, _ = client.Send(context.Background(), Request{})

	assert.True(t, breaker.IsOpen("p"))
}

func TestWrapSuccessRecordsBreakerSuccess(t *testing.T) {
	breaker := NewProviderCircuitBreaker(nil)
	breaker.RecordFailure("p")
	breaker.RecordFailure("p")
	inner := &fakeClient{name: "p"}
	client := Wrap(inner, ResilienceOptions{}, breaker, nil)

	resp, err := client.Send(context.Background(), Request{})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	// A third failure would have opened the circuit; confirm the success
	// reset the streak instead.
	breaker.RecordFailure("p")
	breaker.RecordFailure("p")
	assert.False(t, breaker.IsOpen("p"))
}

// authFailClient always returns a non-retryable auth error.
type authFailClient struct {
	calls int
}

func (c *authFailClient) Name() string { return "auth-fail" }

func (c *authFailClient) Send(ctx context.Context, req Request) (Response, error) {
	c.calls++
	return Response{Success: false, Provider: "auth-fail", ErrorMessage: "401 unauthorized: invalid api key"}, nil
}
