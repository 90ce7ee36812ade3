package tui

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/quantmind-br/gitzip-go/internal/config"
)

var (
	ErrRequired      = errors.New("required")
	ErrInvalidNumber = errors.New("not a whole number")
	ErrPositiveInt   = errors.New("must be at least 1")
	ErrInvalidRange  = errors.New("out of range")
)

var (
	logLevels  = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}
	logFormats = []string{"pretty", "text", "json"}
)

// optional skips check for blank input; blank fields fall back to defaults.
func optional(check func(string) error) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		return check(s)
	}
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	return n, nil
}

func oneOf(kind string, allowed []string) func(string) error {
	return func(s string) error {
		if slices.Contains(allowed, strings.ToLower(strings.TrimSpace(s))) {
			return nil
		}
		return fmt.Errorf("unknown %s %q (want %s)", kind, s, strings.Join(allowed, "|"))
	}
}

func ValidateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrRequired
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(s string) error {
	if err := ValidateRequired(s); err != nil {
		return err
	}
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("expected an http(s) URL")
	}
	return nil
}

var ValidateDuration = optional(func(s string) error {
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("expected a duration like 30s or 2m: %w", err)
	}
	return nil
})

var ValidatePositiveInt = optional(func(s string) error {
	n, err := atoi(s)
	if err != nil {
		return err
	}
	if n < 1 {
		return ErrPositiveInt
	}
	return nil
})

// ValidateIntRange accepts integers in [lo, hi].
func ValidateIntRange(lo, hi int) func(string) error {
	return optional(func(s string) error {
		n, err := atoi(s)
		if err != nil {
			return err
		}
		if n < lo || n > hi {
			return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidRange, n, lo, hi)
		}
		return nil
	})
}

// ValidateSize accepts a byte count or a suffixed size such as 64MB.
var ValidateSize = optional(func(s string) error {
	if _, err := config.ParseSize(s); err != nil {
		return fmt.Errorf("expected a size like 512KB or 1GB: %w", err)
	}
	return nil
})

var (
	ValidateLogLevel  = oneOf("log level", logLevels)
	ValidateLogFormat = oneOf("log format", logFormats)
)
