package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/quantmind-br/gitzip-go/internal/config"
)

// ConfigValues holds form values that map to Config struct.
// Numeric and duration fields are stored as strings for form editing.
type ConfigValues struct {
	APIURL              string
	WebURL              string
	RawURL              string
	Token               string
	DefaultBranch       string
	DetectDefaultBranch bool

	Timeout    string
	MaxRetries string
	UserAgent  string

	Workers       string
	TreeStrategy  string
	StrictProbing bool

	CompressionLevel string
	MemoryLimit      string

	CacheEnabled   bool
	CacheTTL       string
	CacheDirectory string

	OutputDirectory string
	OutputOverwrite bool
	OutputManifest  bool

	LogLevel  string
	LogFormat string
}

// FromConfig converts a Config to ConfigValues for form editing
func FromConfig(cfg *config.Config) *ConfigValues {
	return &ConfigValues{
		APIURL:              cfg.GitHub.APIURL,
		WebURL:              cfg.GitHub.WebURL,
		RawURL:              cfg.GitHub.RawURL,
		Token:               cfg.GitHub.Token,
		DefaultBranch:       cfg.GitHub.DefaultBranch,
		DetectDefaultBranch: cfg.GitHub.DetectDefaultBranch,

		Timeout:    formatDuration(cfg.HTTP.Timeout),
		MaxRetries: strconv.Itoa(cfg.HTTP.MaxRetries),
		UserAgent:  cfg.HTTP.UserAgent,

		Workers:       strconv.Itoa(cfg.Concurrency.Workers),
		TreeStrategy:  cfg.Tree.Strategy,
		StrictProbing: cfg.Resolver.StrictProbing,

		CompressionLevel: strconv.Itoa(cfg.Archive.CompressionLevel),
		MemoryLimit:      cfg.Archive.MemoryLimit,

		CacheEnabled:   cfg.Cache.Enabled,
		CacheTTL:       formatDuration(cfg.Cache.TTL),
		CacheDirectory: cfg.Cache.Directory,

		OutputDirectory: cfg.Output.Directory,
		OutputOverwrite: cfg.Output.Overwrite,
		OutputManifest:  cfg.Output.Manifest,

		LogLevel:  cfg.Logging.Level,
		LogFormat: cfg.Logging.Format,
	}
}

// ToConfig converts form values back to a validated Config.
// Empty numeric and duration fields fall back to defaults.
func (v *ConfigValues) ToConfig() (*config.Config, error) {
	cfg := config.Default()

	cfg.GitHub.APIURL = strings.TrimSpace(v.APIURL)
	cfg.GitHub.WebURL = strings.TrimSpace(v.WebURL)
	cfg.GitHub.RawURL = strings.TrimSpace(v.RawURL)
	cfg.GitHub.Token = strings.TrimSpace(v.Token)
	cfg.GitHub.DefaultBranch = strings.TrimSpace(v.DefaultBranch)
	cfg.GitHub.DetectDefaultBranch = v.DetectDefaultBranch

	var err error
	if cfg.HTTP.Timeout, err = parseDuration(v.Timeout, config.DefaultTimeout); err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}
	if cfg.HTTP.MaxRetries, err = parseInt(v.MaxRetries, config.DefaultMaxRetries); err != nil {
		return nil, fmt.Errorf("max retries: %w", err)
	}
	cfg.HTTP.UserAgent = strings.TrimSpace(v.UserAgent)

	if cfg.Concurrency.Workers, err = parseInt(v.Workers, config.DefaultWorkers); err != nil {
		return nil, fmt.Errorf("workers: %w", err)
	}
	cfg.Tree.Strategy = v.TreeStrategy
	cfg.Resolver.StrictProbing = v.StrictProbing

	if cfg.Archive.CompressionLevel, err = parseInt(v.CompressionLevel, config.DefaultCompressionLevel); err != nil {
		return nil, fmt.Errorf("compression level: %w", err)
	}
	cfg.Archive.MemoryLimit = strings.TrimSpace(v.MemoryLimit)

	cfg.Cache.Enabled = v.CacheEnabled
	if cfg.Cache.TTL, err = parseDuration(v.CacheTTL, config.DefaultCacheTTL); err != nil {
		return nil, fmt.Errorf("cache ttl: %w", err)
	}
	if dir := strings.TrimSpace(v.CacheDirectory); dir != "" {
		cfg.Cache.Directory = dir
	}

	if dir := strings.TrimSpace(v.OutputDirectory); dir != "" {
		cfg.Output.Directory = dir
	}
	cfg.Output.Overwrite = v.OutputOverwrite
	cfg.Output.Manifest = v.OutputManifest

	cfg.Logging.Level = v.LogLevel
	cfg.Logging.Format = v.LogFormat

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

func parseInt(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
