package github

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"

	"github.com/quantmind-br/gitzip-go/internal/domain"
)

func TestNewRetrier(t *testing.T) {
	r := NewRetrier(RetrierOptions{MaxRetries: -1})
	assert.Equal(t, 0, r.opts.MaxRetries)
	assert.Equal(t, time.Second, r.opts.InitialInterval)
	assert.Equal(t, 30*time.Second, r.opts.MaxInterval)
	assert.Equal(t, 2.0, r.opts.Multiplier)

	assert.Equal(t, 0, DefaultRetrierOptions().MaxRetries)
}

func TestRetryWithValue(t *testing.T) {
	fast := RetrierOptions{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
	transient := &domain.RetryableError{Err: domain.NewUpstreamError("u", http.StatusBadGateway, "")}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		v, err := RetryWithValue(context.Background(), NewRetrier(fast), func() (string, error) {
			calls++
			if calls < 3 {
				return "", transient
			}
			return "ok", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "ok", v)
		assert.Equal(t, 3, calls)
	})

	t.Run("budget exhausted returns last error", func(t *testing.T) {
		calls := 0
		_, err := RetryWithValue(context.Background(), NewRetrier(fast), func() (int, error) {
			calls++
			return 0, transient
		})
		assert.ErrorIs(t, err, transient.Err)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		_, err := RetryWithValue(context.Background(), NewRetrier(fast), func() (int, error) {
			calls++
			return 0, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}

func TestHintedBackOff(t *testing.T) {
	r := NewRetrier(RetrierOptions{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 50 * time.Millisecond})
	b := r.newBackoff()

	b.hint = 10 * time.Second
	assert.Equal(t, 50*time.Millisecond, b.NextBackOff(), "hint is capped at the max interval")
	assert.Less(t, b.NextBackOff(), 50*time.Millisecond, "hint applies once")

	b.NextBackOff()
	b.hint = time.Second
	assert.Equal(t, backoff.Stop, b.NextBackOff(), "budget still ends the retries")
}

func TestRetryWithValue_HonorsRetryAfter(t *testing.T) {
	r := NewRetrier(RetrierOptions{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: 40 * time.Millisecond})
	calls := 0
	start := time.Now()
	_, err := RetryWithValue(context.Background(), r, func() (int, error) {
		calls++
		if calls == 1 {
			return 0, &domain.RetryableError{Err: errors.New("slow down"), RetryAfter: 5}
		}
		return 1, nil
	})
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRetryWithValue_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := RetryWithValue(ctx, NewRetrier(RetrierOptions{MaxRetries: 3}), func() (int, error) {
		calls++
		return 0, &domain.RetryableError{Err: errors.New("busy")}
	})
	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}

func TestShouldRetryStatus(t *testing.T) {
	for _, code := range []int{429, 502, 503, 504} {
		assert.True(t, ShouldRetryStatus(code), code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 500, 522} {
		assert.False(t, ShouldRetryStatus(code), code)
	}
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 7*time.Second, ParseRetryAfter("7"))
	assert.Equal(t, time.Duration(0), ParseRetryAfter(""))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("-3"))
	assert.Equal(t, time.Duration(0), ParseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
