package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfig_Validate tests configuration validation
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		check   func(*testing.T, *Config)
		wantErr bool
	}{
		{
			name: "default config is valid",
		},
		{
			name: "workers below minimum are repaired",
			modify: func(c *Config) {
				c.Concurrency.Workers = 0
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultWorkers, c.Concurrency.Workers)
			},
		},
		{
			name: "timeout below minimum is repaired",
			modify: func(c *Config) {
				c.HTTP.Timeout = 100 * time.Millisecond
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultTimeout, c.HTTP.Timeout)
			},
		},
		{
			name: "negative retries are repaired",
			modify: func(c *Config) {
				c.HTTP.MaxRetries = -3
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultMaxRetries, c.HTTP.MaxRetries)
			},
		},
		{
			name: "empty endpoints fall back to the public service",
			modify: func(c *Config) {
				c.GitHub.APIURL = ""
				c.GitHub.WebURL = ""
				c.GitHub.RawURL = ""
				c.GitHub.DefaultBranch = ""
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultAPIURL, c.GitHub.APIURL)
				assert.Equal(t, DefaultWebURL, c.GitHub.WebURL)
				assert.Equal(t, DefaultRawURL, c.GitHub.RawURL)
				assert.Equal(t, "master", c.GitHub.DefaultBranch)
			},
		},
		{
			name: "empty tree strategy defaults to descent",
			modify: func(c *Config) {
				c.Tree.Strategy = ""
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, TreeStrategyDescent, c.Tree.Strategy)
			},
		},
		{
			name: "unknown tree strategy is rejected",
			modify: func(c *Config) {
				c.Tree.Strategy = "bfs"
			},
			wantErr: true,
		},
		{
			name: "compression level out of range is rejected",
			modify: func(c *Config) {
				c.Archive.CompressionLevel = 12
			},
			wantErr: true,
		},
		{
			name: "malformed memory limit is rejected",
			modify: func(c *Config) {
				c.Archive.MemoryLimit = "lots"
			},
			wantErr: true,
		},
		{
			name: "empty memory limit defaults",
			modify: func(c *Config) {
				c.Archive.MemoryLimit = ""
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultArchiveMemoryLimit, c.Archive.MemoryLimit)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if tt.modify != nil {
				tt.modify(cfg)
			}
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestConfig_MemoryLimitBytes(t *testing.T) {
	cfg := Default()
	assert.Equal(t, int64(64*1024*1024), cfg.MemoryLimitBytes())

	cfg.Archive.MemoryLimit = "2KB"
	assert.Equal(t, int64(2048), cfg.MemoryLimitBytes())

	cfg.Archive.MemoryLimit = "garbage"
	assert.Equal(t, int64(64*1024*1024), cfg.MemoryLimitBytes())
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"100", 100, false},
		{"1KB", 1024, false},
		{"10mb", 10 * 1024 * 1024, false},
		{" 2 GB ", 2 * 1024 * 1024 * 1024, false},
		{"", 0, true},
		{"MB", 0, true},
		{"-1", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestDefault tests default configuration
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultAPIURL, cfg.GitHub.APIURL)
	assert.Equal(t, DefaultWebURL, cfg.GitHub.WebURL)
	assert.Equal(t, DefaultRawURL, cfg.GitHub.RawURL)
	assert.True(t, cfg.GitHub.DetectDefaultBranch)
	assert.Equal(t, 0, cfg.HTTP.MaxRetries)
	assert.Equal(t, DefaultWorkers, cfg.Concurrency.Workers)
	assert.True(t, cfg.Resolver.StrictProbing)
	assert.Equal(t, TreeStrategyDescent, cfg.Tree.Strategy)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, CacheDir(), cfg.Cache.Directory)
	assert.False(t, cfg.Output.Overwrite)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "pretty", cfg.Logging.Format)
}

func TestConfigPaths(t *testing.T) {
	assert.True(t, strings.HasSuffix(ConfigDir(), ".gitzip"))
	assert.Equal(t, filepath.Join(ConfigDir(), "cache"), CacheDir())
	assert.Equal(t, filepath.Join(ConfigDir(), "config.yaml"), ConfigFilePath())
}

func TestEnsureDirs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, EnsureConfigDir())
	require.NoError(t, EnsureCacheDir())

	info, err := os.Stat(CacheDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
	return dir
}

func TestLoadWithViper_MissingConfig(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GITHUB_TOKEN", "")

	cfg, v, err := LoadWithViper()
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Equal(t, DefaultOutputDir, cfg.Output.Directory)
	assert.Equal(t, DefaultWorkers, cfg.Concurrency.Workers)
	assert.Empty(t, cfg.GitHub.Token)
}

func TestLoadWithViper_InvalidConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("invalid: yaml: content: ["), 0644))

	cfg, _, err := LoadWithViper()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadWithViper_ValidConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	content := `
github:
  default_branch: main
concurrency:
  workers: 3
tree:
  strategy: flat
archive:
  memory_limit: 1MB
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.GitHub.DefaultBranch)
	assert.Equal(t, 3, cfg.Concurrency.Workers)
	assert.Equal(t, TreeStrategyFlat, cfg.Tree.Strategy)
	assert.Equal(t, int64(1024*1024), cfg.MemoryLimitBytes())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadWithViper_Environment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GITZIP_OUTPUT_DIRECTORY", "./env-output")
	t.Setenv("GITZIP_RESOLVER_STRICT_PROBING", "false")

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)
	assert.Equal(t, "./env-output", cfg.Output.Directory)
	assert.False(t, cfg.Resolver.StrictProbing)
}

func TestLoadWithViper_TokenFallback(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GITHUB_TOKEN", "ghp_fallback")

	cfg, _, err := LoadWithViper()
	require.NoError(t, err)
	assert.Equal(t, "ghp_fallback", cfg.GitHub.Token)

	t.Setenv("GITZIP_GITHUB_TOKEN", "ghp_explicit")
	cfg, _, err = LoadWithViper()
	require.NoError(t, err)
	assert.Equal(t, "ghp_explicit", cfg.GitHub.Token)
}

func TestSave_RoundTrip(t *testing.T) {
	dir := chdirTemp(t)

	cfg := Default()
	cfg.Concurrency.Workers = 3
	cfg.Tree.Strategy = TreeStrategyFlat
	cfg.Cache.TTL = 48 * time.Hour
	require.NoError(t, Save(cfg, filepath.Join(dir, "config.yaml")))

	loaded, _, err := LoadWithViper()
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Concurrency.Workers)
	assert.Equal(t, TreeStrategyFlat, loaded.Tree.Strategy)
	assert.Equal(t, 48*time.Hour, loaded.Cache.TTL)
}

func TestSave_RejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Tree.Strategy = "bogus"
	assert.Error(t, Save(cfg, filepath.Join(t.TempDir(), "config.yaml")))
}
