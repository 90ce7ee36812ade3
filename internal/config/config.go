package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	GitHub      GitHubConfig      `mapstructure:"github" yaml:"github"`
	HTTP        HTTPConfig        `mapstructure:"http" yaml:"http"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Resolver    ResolverConfig    `mapstructure:"resolver" yaml:"resolver"`
	Tree        TreeConfig        `mapstructure:"tree" yaml:"tree"`
	Archive     ArchiveConfig     `mapstructure:"archive" yaml:"archive"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// GitHubConfig contains hosting service endpoints and credentials
type GitHubConfig struct {
	APIURL              string `mapstructure:"api_url" yaml:"api_url"`
	WebURL              string `mapstructure:"web_url" yaml:"web_url"`
	RawURL              string `mapstructure:"raw_url" yaml:"raw_url"`
	Token               string `mapstructure:"token" yaml:"token,omitempty"`
	DefaultBranch       string `mapstructure:"default_branch" yaml:"default_branch"`
	DetectDefaultBranch bool   `mapstructure:"detect_default_branch" yaml:"detect_default_branch"`
}

// HTTPConfig contains HTTP client settings
type HTTPConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// ConcurrencyConfig contains concurrency settings
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// ResolverConfig contains branch resolution settings
type ResolverConfig struct {
	StrictProbing bool `mapstructure:"strict_probing" yaml:"strict_probing"`
}

// TreeConfig contains tree listing settings
type TreeConfig struct {
	Strategy string `mapstructure:"strategy" yaml:"strategy"`
}

// ArchiveConfig contains archive assembly settings
type ArchiveConfig struct {
	MemoryLimit      string `mapstructure:"memory_limit" yaml:"memory_limit"`
	CompressionLevel int    `mapstructure:"compression_level" yaml:"compression_level"`
}

// CacheConfig contains blob cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
	Overwrite bool   `mapstructure:"overwrite" yaml:"overwrite"`
	// Manifest writes a JSON index of every saved artifact
	Manifest bool `mapstructure:"manifest" yaml:"manifest"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = DefaultAPIURL
	}
	if c.GitHub.WebURL == "" {
		c.GitHub.WebURL = DefaultWebURL
	}
	if c.GitHub.RawURL == "" {
		c.GitHub.RawURL = DefaultRawURL
	}
	if c.GitHub.DefaultBranch == "" {
		c.GitHub.DefaultBranch = DefaultBranch
	}
	if c.HTTP.Timeout < time.Second {
		c.HTTP.Timeout = DefaultTimeout
	}
	if c.HTTP.MaxRetries < 0 {
		c.HTTP.MaxRetries = DefaultMaxRetries
	}
	if c.Concurrency.Workers < 1 {
		c.Concurrency.Workers = DefaultWorkers
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}
	switch c.Tree.Strategy {
	case "":
		c.Tree.Strategy = DefaultTreeStrategy
	case TreeStrategyDescent, TreeStrategyFlat:
	default:
		return fmt.Errorf("invalid tree.strategy %q: want %q or %q", c.Tree.Strategy, TreeStrategyDescent, TreeStrategyFlat)
	}
	if c.Archive.CompressionLevel < -2 || c.Archive.CompressionLevel > 9 {
		return fmt.Errorf("invalid archive.compression_level %d: want -2..9", c.Archive.CompressionLevel)
	}
	if c.Archive.MemoryLimit == "" {
		c.Archive.MemoryLimit = DefaultArchiveMemoryLimit
	} else {
		if _, err := ParseSize(c.Archive.MemoryLimit); err != nil {
			return fmt.Errorf("invalid archive.memory_limit: %w", err)
		}
	}
	return nil
}

// MemoryLimitBytes returns the parsed archive memory limit
func (c *Config) MemoryLimitBytes() int64 {
	n, err := ParseSize(c.Archive.MemoryLimit)
	if err != nil {
		n, _ = ParseSize(DefaultArchiveMemoryLimit)
	}
	return n
}

func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	var multiplier int64 = 1
	if strings.HasSuffix(s, "GB") {
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "GB")
	} else if strings.HasSuffix(s, "MB") {
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "MB")
	} else if strings.HasSuffix(s, "KB") {
		multiplier = 1024
		s = strings.TrimSuffix(s, "KB")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("no numeric value in size string")
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value: %w", err)
	}

	if n < 0 {
		return 0, fmt.Errorf("negative size not allowed")
	}

	return n * multiplier, nil
}
