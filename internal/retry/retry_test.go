package retry

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/spetersoncode/triage/llm"
	"github.com/stretchr/testify/assert"
)

// mockTransientError simulates a transient network error.
type mockTransientError struct {
	msg string
}

func (e *mockTransientError) Error() string   { return e.msg }
func (e *mockTransientError) Timeout() bool   { return true }
func (e *mockTransientError) Temporary() bool { return true }

var _ net.Error = (*mockTransientError)(nil)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDoSuccess(t *testing.T) {
	callCount := 0
	result, err := Do(context.Background(), DefaultConfig(), func() (string, error) {
		callCount++
		return "success", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 1, callCount)
}

func TestDoRetryOnTransientError(t *testing.T) {
	callCount := 0
	var retries []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, _ time.Duration, _ error) { retries = append(retries, attempt) }

	result, err := Do(context.Background(), cfg, func() (string, error) {
		callCount++
		if callCount < 3 {
			return "", &mockTransientError{msg: "timeout"}
		}
		return "success", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestDoNoRetryOnPermanentError(t *testing.T) {
	callCount := 0
	permanent := llm.NewPermanentError("unauthorized", 401, nil)

	_, err := Do(context.Background(), fastConfig(5), func() (int, error) {
		callCount++
		return 0, permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, callCount)
}

func TestDoExhaustsAttempts(t *testing.T) {
	callCount := 0
	_, err := Do(context.Background(), fastConfig(3), func() (int, error) {
		callCount++
		return 0, llm.NewTransientError("overloaded", 503, nil)
	})

	assert.Error(t, err)
	assert.True(t, llm.IsTransient(err))
	assert.Equal(t, 3, callCount)
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 3, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}

	_, err := Do(ctx, cfg, func() (int, error) {
		cancel()
		return 0, llm.NewTransientError("rate limited", 429, nil)
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDisabled(t *testing.T) {
	callCount := 0
	_, _ = Do(context.Background(), Disabled(), func() (int, error) {
		callCount++
		return 0, llm.NewTransientError("rate limited", 429, nil)
	})
	assert.Equal(t, 1, callCount)
}

func TestConfigDelay(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}

	assert.Equal(t, 100*time.Millisecond, cfg.Delay(0))
	assert.Equal(t, 200*time.Millisecond, cfg.Delay(1))
	assert.Equal(t, 400*time.Millisecond, cfg.Delay(2))
	assert.Equal(t, time.Second, cfg.Delay(10))
	assert.Equal(t, 100*time.Millisecond, cfg.Delay(-1))
}

func TestEffectiveDelayHonorsRetryAfter(t *testing.T) {
	err := llm.NewTransientErrorWithRetry("slow down", 429, 3*time.Second, nil)
	assert.Equal(t, 3*time.Second, effectiveDelay(time.Second, err))
	assert.Equal(t, 5*time.Second, effectiveDelay(5*time.Second, err))
}

type codeErr int

func (c codeErr) Error() string   { return "api error" }
func (c codeErr) StatusCode() int { return int(c) }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"categorized transient", llm.NewTransientError("x", 503, nil), true},
		{"categorized permanent wins over message", llm.NewPermanentError("timeout", 401, nil), false},
		{"status 429", codeErr(429), true},
		{"status 502", codeErr(502), true},
		{"status 404", codeErr(404), false},
		{"net timeout", &mockTransientError{msg: "i/o"}, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"message pattern", errors.New("upstream: Bad Gateway"), true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
