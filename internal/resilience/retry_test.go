package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = Policy{Attempts: 3, Backoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, Name: "test"}

func TestRetry_SucceedsAfterTransient(t *testing.T) {
	t.Parallel()

	calls := 0
	v, err := Retry(context.Background(), fast, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &StatusError{Provider: "places", StatusCode: 503}
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Retry(context.Background(), fast, func(context.Context) (int, error) {
		calls++
		return 0, &StatusError{Provider: "places", StatusCode: 400, Body: "bad query"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, err.Error(), "bad query")
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Retry(context.Background(), fast, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("read tcp: i/o timeout")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(ctx, Policy{Attempts: 5, Backoff: time.Hour}, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, &StatusError{StatusCode: 429}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(&StatusError{StatusCode: 429}))
	assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", &StatusError{StatusCode: 502})))
	assert.False(t, IsTransient(&StatusError{StatusCode: 404}))
	assert.True(t, IsTransient(errors.New("connection reset by peer")))
	assert.False(t, IsTransient(errors.New("invalid api key")))
}

func TestPolicyDelayCapped(t *testing.T) {
	t.Parallel()

	p := Policy{Backoff: time.Second, MaxBackoff: 2 * time.Second, Jitter: -1}.withDefaults()
	assert.Equal(t, time.Second, p.delay(0))
	assert.Equal(t, 2*time.Second, p.delay(5))
}
