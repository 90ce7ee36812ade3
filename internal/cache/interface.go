package cache

import (
	"time"

	"github.com/quantmind-br/gitzip-go/internal/domain"
)

// Ensure BadgerCache implements domain.Cache
var _ domain.Cache = (*BadgerCache)(nil)

// Options contains cache configuration options
type Options struct {
	Directory string
	InMemory  bool
	// Logger enables badger's own logging
	Logger bool
	// GCInterval is how often the value log is compacted (0 disables)
	GCInterval time.Duration
}

// DefaultOptions returns default cache options
func DefaultOptions() Options {
	return Options{
		GCInterval: 5 * time.Minute,
	}
}

// Stats describes the on-disk state of the cache
type Stats struct {
	Directory string `json:"directory" yaml:"directory"`
	Entries   int64  `json:"entries" yaml:"entries"`
	LSMSize   int64  `json:"lsm_size" yaml:"lsm_size"`
	VLogSize  int64  `json:"vlog_size" yaml:"vlog_size"`
}

// TotalSize returns the combined LSM and value log size in bytes
func (s Stats) TotalSize() int64 {
	return s.LSMSize + s.VLogSize
}
