package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/gitzip-go/internal/config"
	"github.com/quantmind-br/gitzip-go/internal/testutil"
)

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(rootCmd) })

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	_, err := rootCmd.ExecuteC()
	return buf.String(), err
}

func stubConfig(t *testing.T, tweak func(cfg *config.Config)) {
	t.Helper()
	orig := loadConfig
	t.Cleanup(func() { loadConfig = orig })

	loadConfig = func() (*config.Config, error) {
		cfg := config.Default()
		cfg.Cache.Enabled = false
		cfg.Output.Directory = t.TempDir()
		if tweak != nil {
			tweak(cfg)
		}
		return cfg, nil
	}
}

func newFake(t *testing.T) *testutil.FakeGitHub {
	t.Helper()
	fake := testutil.NewFakeGitHub(t, testutil.FakeRepo{
		Owner:   "acme",
		Project: "widgets",
		Branches: map[string]map[string]string{
			"main": {
				"README.md":    "hello",
				"src/lib/a.ts": "a",
				"src/lib/b.ts": "b",
			},
			"release/2.1": {"docs/index.md": "# docs"},
		},
	})
	return fake
}

func pointAt(fake *testutil.FakeGitHub, outDir string) func(cfg *config.Config) {
	return func(cfg *config.Config) {
		cfg.GitHub.APIURL = fake.APIURL()
		cfg.GitHub.WebURL = fake.WebURL()
		cfg.GitHub.RawURL = fake.RawURL()
		if outDir != "" {
			cfg.Output.Directory = outDir
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gitzip")
}

func TestResolveCmd(t *testing.T) {
	fake := newFake(t)
	stubConfig(t, pointAt(fake, ""))

	out, err := execute(t, "resolve", fake.RepoWebURL("tree/release/2.1/docs"))
	require.NoError(t, err)
	assert.Contains(t, out, "branch: release/2.1")
	assert.Contains(t, out, "path: docs")
	assert.Contains(t, out, "owner: acme")
}

func TestResolveCmd_Invalid(t *testing.T) {
	fake := newFake(t)
	stubConfig(t, pointAt(fake, ""))

	_, err := execute(t, "resolve", "https://example.com/nothing")
	assert.Error(t, err)
}

func TestTreeCmd(t *testing.T) {
	fake := newFake(t)
	stubConfig(t, pointAt(fake, ""))

	out, err := execute(t, "tree", fake.RepoWebURL("tree/main/src"))
	require.NoError(t, err)
	assert.Contains(t, out, "lib/a.ts")
	assert.Contains(t, out, "lib/b.ts")
	assert.Contains(t, out, "2 files")
}

func TestDownloadCmd(t *testing.T) {
	fake := newFake(t)
	outDir := t.TempDir()
	stubConfig(t, pointAt(fake, outDir))

	out, err := execute(t, "--no-progress", fake.RepoWebURL("tree/main/src/lib"))
	require.NoError(t, err)
	assert.Contains(t, out, "Saved")

	_, err = os.Stat(filepath.Join(outDir, "lib.zip"))
	assert.NoError(t, err)
}

func TestDownloadCmd_NoArgsShowsHelp(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestZipTreeCmd(t *testing.T) {
	fake := newFake(t)
	outDir := t.TempDir()
	stubConfig(t, pointAt(fake, outDir))

	_, err := execute(t, "zip-tree", "lib", fake.TreeURL("main", "src/lib"), "--no-progress")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "lib.zip"))
	assert.NoError(t, err)
}

func TestBuildConfig_Flags(t *testing.T) {
	stubConfig(t, func(cfg *config.Config) { cfg.Cache.Enabled = true })
	t.Cleanup(func() { resetFlags(rootCmd) })

	require.NoError(t, rootCmd.PersistentFlags().Set("no-cache", "true"))
	require.NoError(t, rootCmd.PersistentFlags().Set("lenient", "true"))

	cfg, err := buildConfig(rootCmd)
	require.NoError(t, err)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Resolver.StrictProbing)
}

func TestConfigShowCmd_MasksToken(t *testing.T) {
	stubConfig(t, func(cfg *config.Config) { cfg.GitHub.Token = "ghp_secret" })

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "api_url:")
	assert.NotContains(t, out, "ghp_secret")
}

func TestConfigInitCmd(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(home, ".gitzip", "config.yaml"))

	data, err := os.ReadFile(filepath.Join(home, ".gitzip", "config.yaml"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "workers:"))

	_, err = execute(t, "config", "init")
	assert.Error(t, err)
}

func TestCacheCmds(t *testing.T) {
	dir := t.TempDir()
	stubConfig(t, func(cfg *config.Config) { cfg.Cache.Directory = dir })

	out, err := execute(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:   0")
	assert.Contains(t, out, dir)

	out, err = execute(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared")
}

func TestBatchCmd(t *testing.T) {
	fake := newFake(t)
	stubConfig(t, pointAt(fake, ""))

	outDir := t.TempDir()
	batch := filepath.Join(t.TempDir(), "batch.yaml")
	content := "sources:\n" +
		"  - url: " + fake.RepoWebURL("blob/main/README.md") + "\n" +
		"  - url: https://example.com/nope\n" +
		"options:\n  continue_on_error: true\n  output: " + outDir + "\n"
	require.NoError(t, os.WriteFile(batch, []byte(content), 0644))

	out, err := execute(t, "batch", batch, "--no-progress")
	assert.Error(t, err)
	assert.Contains(t, out, "FAILED https://example.com/nope")
	assert.Contains(t, out, "Saved")

	_, err = os.Stat(filepath.Join(outDir, "README.md"))
	assert.NoError(t, err)
}
