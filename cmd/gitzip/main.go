package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/quantmind-br/gitzip-go/internal/app"
	"github.com/quantmind-br/gitzip-go/internal/cache"
	"github.com/quantmind-br/gitzip-go/internal/config"
	"github.com/quantmind-br/gitzip-go/internal/domain"
	"github.com/quantmind-br/gitzip-go/internal/manifest"
	"github.com/quantmind-br/gitzip-go/internal/tui"
	"github.com/quantmind-br/gitzip-go/internal/utils"
	"github.com/quantmind-br/gitzip-go/pkg/version"
)

var (
	cfgFile string
	verbose bool
	log     *utils.Logger

	// Dependencies for testing
	loadConfig  = config.Load
	progressOut io.Writer
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gitzip [url]",
	Short: "Download any part of a GitHub repository",
	Long: `gitzip downloads a whole repository, a single directory or a single file
from a GitHub URL.

Directory URLs are zipped locally from the API, repository root URLs are
saved as the upstream archive, and file URLs are saved as-is.`,
	Version:       version.Short(),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDownload,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.gitzip/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("token", "", "GitHub access token (default $GITHUB_TOKEN)")
	rootCmd.PersistentFlags().Duration("timeout", config.DefaultTimeout, "Request timeout")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable the blob cache")
	rootCmd.PersistentFlags().Bool("lenient", false, "Keep probing branch candidates after non-404 errors")

	// Download flags
	rootCmd.Flags().StringP("output", "o", config.DefaultOutputDir, "Output directory")
	rootCmd.Flags().IntP("concurrency", "j", config.DefaultWorkers, "Number of concurrent workers")
	rootCmd.Flags().String("strategy", config.DefaultTreeStrategy, "Tree listing strategy (descent, flat)")
	rootCmd.Flags().Bool("force", false, "Overwrite existing files")
	rootCmd.Flags().Bool("manifest", false, "Write a JSON manifest of saved downloads")
	rootCmd.Flags().Bool("dry-run", false, "Simulate without writing files")
	rootCmd.Flags().Bool("no-progress", false, "Hide the progress bar")

	// Bind flags to viper
	_ = viper.BindPFlag("github.token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("http.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("output.directory", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("concurrency.workers", rootCmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("tree.strategy", rootCmd.Flags().Lookup("strategy"))
	_ = viper.BindPFlag("output.overwrite", rootCmd.Flags().Lookup("force"))
	_ = viper.BindPFlag("output.manifest", rootCmd.Flags().Lookup("manifest"))

	zipTreeCmd.Flags().AddFlagSet(rootCmd.Flags())
	batchCmd.Flags().AddFlagSet(rootCmd.Flags())
	configEditCmd.Flags().Bool("accessible", false, "Use accessible prompts instead of the full-screen editor")

	// Add subcommands
	rootCmd.AddCommand(zipTreeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd, configEditCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func initLogger() {
	logLevel := "info"
	if verbose {
		logLevel = "debug"
	}
	log = utils.NewLogger(utils.LoggerOptions{
		Level:   logLevel,
		Format:  "pretty",
		Verbose: verbose,
	})
}

// buildConfig loads the configuration and applies flags viper cannot bind
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	if lenient, _ := cmd.Flags().GetBool("lenient"); lenient {
		cfg.Resolver.StrictProbing = false
	}
	return cfg, nil
}

func newOrchestrator(cmd *cobra.Command, cfg *config.Config) (*app.Orchestrator, error) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	force, _ := cmd.Flags().GetBool("force")

	opts := app.OrchestratorOptions{
		CommonOptions: domain.CommonOptions{
			Verbose: verbose,
			Force:   force,
		},
		Config: cfg,
		Logger: log,
		DryRun: dryRun,
	}
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); !noProgress && !verbose {
		opts.Observer = utils.NewBarObserver(progressOut)
	}

	orchestrator, err := app.NewOrchestrator(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	return orchestrator, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Info().Msg("Shutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func runDownload(cmd *cobra.Command, args []string) error {
	initLogger()

	if len(args) == 0 {
		return cmd.Help()
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	orchestrator, err := newOrchestrator(cmd, cfg)
	if err != nil {
		return err
	}
	defer orchestrator.Close()

	ctx, cancel := signalContext()
	defer cancel()

	result, err := orchestrator.Download(ctx, args[0])
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

var zipTreeCmd = &cobra.Command{
	Use:   "zip-tree <name> <tree-api-url>",
	Short: "Zip the files of an API tree URL",
	Long:  "Lists an API tree URL recursively and saves its files as <name>.zip, skipping URL resolution.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogger()

		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		orchestrator, err := newOrchestrator(cmd, cfg)
		if err != nil {
			return err
		}
		defer orchestrator.Close()

		ctx, cancel := signalContext()
		defer cancel()

		result, err := orchestrator.ZipFromTreeURL(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), result)
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Download every URL listed in a YAML or JSON batch file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogger()

		batch, err := manifest.NewLoader().Load(args[0])
		if err != nil {
			return err
		}
		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		if batch.Options.Output != "" && !cmd.Flags().Changed("output") {
			cfg.Output.Directory = batch.Options.Output
		}

		orchestrator, err := newOrchestrator(cmd, cfg)
		if err != nil {
			return err
		}
		defer orchestrator.Close()

		ctx, cancel := signalContext()
		defer cancel()

		items, err := orchestrator.RunBatch(ctx, batch)
		out := cmd.OutOrStdout()
		for _, item := range items {
			if item.Err != nil {
				fmt.Fprintf(out, "FAILED %s: %v\n", item.Source.URL, item.Err)
				continue
			}
			printResult(out, item.Result)
		}
		return err
	},
}

func printResult(w io.Writer, r *app.Result) {
	fmt.Fprintf(w, "Saved %s (%s, %d entries, %s) in %s\n",
		r.Path, r.Type, r.Entries, utils.FormatBytes(r.Size), r.Duration.Round(time.Millisecond))
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Resolve a URL into owner, project, branch and path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogger()

		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		cfg.Cache.Enabled = false
		orchestrator, err := newOrchestrator(cmd, cfg)
		if err != nil {
			return err
		}
		defer orchestrator.Close()

		loc, err := orchestrator.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return yaml.NewEncoder(cmd.OutOrStdout()).Encode(loc)
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <url>",
	Short: "List the files a download would contain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		initLogger()

		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}
		cfg.Cache.Enabled = false
		orchestrator, err := newOrchestrator(cmd, cfg)
		if err != nil {
			return err
		}
		defer orchestrator.Close()

		_, entries, err := orchestrator.ListTree(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, e := range entries {
			fmt.Fprintln(out, e.Path())
		}
		fmt.Fprintf(out, "%d files\n", len(entries))
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the blob cache",
}

func openCache() (*cache.BadgerCache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cache.NewBadgerCache(cache.Options{
		Directory: utils.ExpandPath(cfg.Cache.Directory),
	})
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show blob cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close()

		stats := c.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Directory: %s\n", stats.Directory)
		fmt.Fprintf(out, "Entries:   %d\n", stats.Entries)
		fmt.Fprintf(out, "Size:      %s\n", utils.FormatBytes(stats.TotalSize()))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached blob",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.GitHub.Token != "" {
			cfg.GitHub.Token = "***"
		}
		return yaml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigFilePath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := config.Save(config.Default(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		accessible, _ := cmd.Flags().GetBool("accessible")
		path := config.ConfigFilePath()

		return tui.Run(tui.Options{
			Config:     cfg,
			Accessible: accessible,
			Save: func(c *config.Config) error {
				return config.Save(c, path)
			},
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
	},
}
