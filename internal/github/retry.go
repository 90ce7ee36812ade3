package github

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/quantmind-br/gitzip-go/internal/domain"
	"github.com/quantmind-br/gitzip-go/internal/utils"
)

// RetrierOptions configures the retry policy of API requests.
// MaxRetries of zero performs exactly one attempt.
type RetrierOptions struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Logger          *utils.Logger
}

// DefaultRetrierOptions returns default retrier options
func DefaultRetrierOptions() RetrierOptions {
	return RetrierOptions{
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
	}
}

// Retrier retries transient upstream failures with exponential backoff,
// waiting at least as long as a Retry-After hint asks.
type Retrier struct {
	opts RetrierOptions
}

// NewRetrier creates a new Retrier with the given options
func NewRetrier(opts RetrierOptions) *Retrier {
	def := DefaultRetrierOptions()
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = def.InitialInterval
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = def.MaxInterval
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = def.Multiplier
	}
	return &Retrier{opts: opts}
}

// hintedBackOff lets a Retry-After hint stretch the next wait, up to max
type hintedBackOff struct {
	backoff.BackOff
	hint time.Duration
	max  time.Duration
}

func (b *hintedBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if b.hint > next {
		next = min(b.hint, b.max)
	}
	b.hint = 0
	return next
}

func (r *Retrier) newBackoff() *hintedBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.opts.InitialInterval
	b.MaxInterval = r.opts.MaxInterval
	b.Multiplier = r.opts.Multiplier
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0
	b.Reset()

	return &hintedBackOff{
		BackOff: backoff.WithMaxRetries(b, uint64(r.opts.MaxRetries)),
		max:     r.opts.MaxInterval,
	}
}

// RetryWithValue runs operation until it succeeds, fails permanently, or the
// retry budget is spent. Only domain.RetryableError failures are retried and
// the last operation error is returned.
func RetryWithValue[T any](ctx context.Context, r *Retrier, operation func() (T, error)) (T, error) {
	var (
		result  T
		lastErr error
	)
	policy := r.newBackoff()

	err := backoff.RetryNotify(func() error {
		var err error
		result, err = operation()
		if err == nil {
			return nil
		}
		lastErr = err

		var retryable *domain.RetryableError
		if !errors.As(err, &retryable) {
			return backoff.Permanent(err)
		}
		policy.hint = time.Duration(retryable.RetryAfter) * time.Second
		return err
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		if r.opts.Logger != nil {
			r.opts.Logger.Debug().Err(err).Dur("wait", wait).Msg("Retrying request")
		}
	})

	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return result, lastErr
	}
	return result, nil
}

// ShouldRetryStatus returns true if the HTTP status code is transient
func ShouldRetryStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// ParseRetryAfter parses a Retry-After header in seconds form
func ParseRetryAfter(retryAfter string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(retryAfter))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
