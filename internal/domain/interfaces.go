package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination=../mocks/cache.go -package=mocks github.com/quantmind-br/gitzip-go/internal/domain Cache

// Cache defines the interface for content caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Has checks if a key exists in cache
	Has(ctx context.Context, key string) bool
	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error
	// Close releases cache resources
	Close() error
}

// ProgressEvent is delivered to the observer after every progress mutation
type ProgressEvent struct {
	Status  Status
	Message string
	Percent int
}

// Observer receives progress events synchronously, one call per mutation.
type Observer interface {
	OnProgress(event ProgressEvent)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(event ProgressEvent)

// OnProgress calls f(event)
func (f ObserverFunc) OnProgress(event ProgressEvent) {
	f(event)
}
