package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// GitHub defaults
	DefaultAPIURL              = "https://api.github.com"
	DefaultWebURL              = "https://github.com"
	DefaultRawURL              = "https://raw.githubusercontent.com"
	DefaultBranch              = "master"
	DefaultDetectDefaultBranch = true

	// HTTP defaults
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 0

	// Concurrency defaults
	DefaultWorkers = 8

	// Resolver defaults
	DefaultStrictProbing = true

	// Tree defaults
	TreeStrategyDescent = "descent"
	TreeStrategyFlat    = "flat"
	DefaultTreeStrategy = TreeStrategyDescent

	// Archive defaults
	DefaultArchiveMemoryLimit = "64MB"
	DefaultCompressionLevel   = -1

	// Cache defaults
	DefaultCacheEnabled = true
	DefaultCacheTTL     = 7 * 24 * time.Hour

	// Output defaults
	DefaultOutputDir = "."

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gitzip"
	}
	return filepath.Join(home, ".gitzip")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIURL:              DefaultAPIURL,
			WebURL:              DefaultWebURL,
			RawURL:              DefaultRawURL,
			DefaultBranch:       DefaultBranch,
			DetectDefaultBranch: DefaultDetectDefaultBranch,
		},
		HTTP: HTTPConfig{
			Timeout:    DefaultTimeout,
			MaxRetries: DefaultMaxRetries,
		},
		Concurrency: ConcurrencyConfig{
			Workers: DefaultWorkers,
		},
		Resolver: ResolverConfig{
			StrictProbing: DefaultStrictProbing,
		},
		Tree: TreeConfig{
			Strategy: DefaultTreeStrategy,
		},
		Archive: ArchiveConfig{
			MemoryLimit:      DefaultArchiveMemoryLimit,
			CompressionLevel: DefaultCompressionLevel,
		},
		Cache: CacheConfig{
			Enabled:   DefaultCacheEnabled,
			TTL:       DefaultCacheTTL,
			Directory: CacheDir(),
		},
		Output: OutputConfig{
			Directory: DefaultOutputDir,
			Overwrite: false,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
