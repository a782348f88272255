package gateway

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newTestClient() *Client {
	return &Client{
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  slog.Default(),
	}
}

func TestCallWithRetry_SucceedsFirstTry(t *testing.T) {
	c := newTestClient()
	calls := 0
	err := c.callWithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCallWithRetry_RetriesOnceOnRetryableError(t *testing.T) {
	c := newTestClient()
	calls := 0
	err := c.callWithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return status.Error(codes.Unavailable, "down")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCallWithRetry_DoesNotRetryNonRetryableError(t *testing.T) {
	c := newTestClient()
	calls := 0
	err := c.callWithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		return status.Error(codes.InvalidArgument, "bad")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCallWithRetry_FailsAfterRetryExhausted(t *testing.T) {
	c := newTestClient()
	calls := 0
	err := c.callWithRetry(context.Background(), func(ctx context.Context) error {
		calls++
		return status.Error(codes.Unavailable, "still down")
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}
