package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors
var (
	// ErrUnresolvableURL indicates the input matches no known URL grammar
	ErrUnresolvableURL = errors.New("unresolvable URL")

	// ErrNotFound indicates the repository, branch or path does not exist upstream
	ErrNotFound = errors.New("not found")

	// ErrTreeTooLarge indicates a recursive tree listing was truncated by the upstream cap
	ErrTreeTooLarge = errors.New("tree listing exceeds the API size limit")

	// ErrBusy indicates a top-level request is already in flight
	ErrBusy = errors.New("a download is already in progress")

	// ErrRateLimited indicates the upstream rate limit was exhausted
	ErrRateLimited = errors.New("rate limited")

	// ErrCacheMiss indicates a cache miss
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnsafePath indicates an archive entry path escapes the archive root
	ErrUnsafePath = errors.New("unsafe archive path")

	// ErrDuplicatePath indicates two archive entries share the same path
	ErrDuplicatePath = errors.New("duplicate archive path")
)

// UpstreamError is any non-2xx response from the hosting API.
// Message carries the upstream-provided text verbatim when available.
type UpstreamError struct {
	URL        string
	StatusCode int
	Message    string
	RateLimit  bool
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream error for %s: status %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream error for %s: status %d", e.URL, e.StatusCode)
}

// Is maps HTTP semantics onto the sentinel taxonomy so callers can use errors.Is.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.RateLimit
	}
	return false
}

// NewUpstreamError creates a new UpstreamError
func NewUpstreamError(url string, statusCode int, message string) *UpstreamError {
	return &UpstreamError{
		URL:        url,
		StatusCode: statusCode,
		Message:    message,
	}
}

// RetryableError indicates an error that can be retried
type RetryableError struct {
	Err        error
	RetryAfter int // Seconds to wait before retry, 0 if unknown
}

func (e *RetryableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("retryable error (retry after %ds): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("retryable error: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var retryable *RetryableError
	return errors.As(err, &retryable)
}

// IsNotFound reports whether err means the upstream resource does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// UserMessage returns the text shown to the observer for a failed request.
func UserMessage(err error) string {
	var upstream *UpstreamError
	switch {
	case errors.As(err, &upstream) && upstream.Message != "":
		return "Error: " + upstream.Message
	case errors.Is(err, ErrTreeTooLarge):
		return "Error: the tree listing is over the API limitation, use a deeper directory"
	case errors.Is(err, ErrUnresolvableURL):
		return "Error: invalid URL"
	default:
		return "Error: " + err.Error()
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
