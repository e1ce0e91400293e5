package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/wikicorpus/internal/config"
	"github.com/nao1215/wikicorpus/internal/log"
	"github.com/nao1215/wikicorpus/internal/model"
	"github.com/nao1215/wikicorpus/internal/pipeline"
	"github.com/nao1215/wikicorpus/internal/report"
	"github.com/nao1215/wikicorpus/internal/wiki"
)

// NewRootCmd creates the root command, which runs a crawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikicorpus <category> <titles.json> <corpus.json> <stat.json>",
		Short: "Harvest Wikipedia article texts of a category tree into a JSON corpus",
		Long: `wikicorpus walks a Wikipedia category and all of its subcategories,
collects every article title, then downloads the plain-text extract of each
article into one JSON object keyed by title.

Three files are written:
  titles.json   sorted JSON array of every discovered title
  corpus.json   {"title": "text", ...}
  stat.json     {"count": N, "text_size": N, "title_size": N}

Discovered titles and visited categories are kept in the store directory,
so an interrupted crawl picks up where it stopped.

Examples:
  # Crawl a category of the Russian Wikipedia (default language)
  wikicorpus "Категория:Физика" titles.json corpus.json stat.json

  # Crawl the English Wikipedia without pacing between batches
  wikicorpus --language en --pacing 0s "Category:Physics" t.json c.json s.json

  # Fetch texts for an existing titles file, skipping the traversal
  wikicorpus --from-titles "Category:Physics" t.json c.json s.json

  # Write a Markdown run summary
  wikicorpus --report run.md "Category:Physics" t.json c.json s.json`,
		Args:          cobra.ExactArgs(4),
		RunE:          runCrawlCmd,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikicorpus in current or home directory)")

	// Endpoint flags
	cmd.Flags().StringP("language", "l", config.DefaultLanguage,
		"Wikipedia language edition")
	cmd.Flags().String("api-url", "",
		"Explicit api.php endpoint (overrides --language)")

	// Fetch behavior flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of titles fetched together")
	cmd.Flags().DurationP("pacing", "p", config.DefaultPacingInterval,
		"Minimum interval between batch starts (0 disables pacing)")
	cmd.Flags().Int("max-in-flight", 0,
		"Maximum concurrent requests inside a batch (0 means one per title)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")

	// Retry flags
	cmd.Flags().Duration("retry-initial", 0,
		"First wait before a retry (0 retries immediately)")
	cmd.Flags().Duration("retry-max-interval", config.DefaultRetryMaxInterval,
		"Maximum wait between retries")
	cmd.Flags().Uint64("retry-max-attempts", 0,
		"Maximum attempts per operation (0 retries forever)")

	// HTTP flags
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().String("token", "",
		"OAuth bearer token")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")

	// State and output flags
	cmd.Flags().StringP("store-dir", "s", "",
		"Directory of the title and category stores (default: XDG data directory)")
	cmd.Flags().StringP("report", "r", "",
		"Write a run summary to the file (.md, .json or .txt)")
	cmd.Flags().Bool("from-titles", false,
		"Skip the traversal and fetch the titles listed in the titles file")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runCrawlCmd executes a crawl.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cmd, cfg, logger)
}

// buildConfig layers defaults, the configuration file, changed flags and the
// positional arguments, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; otherwise a missing file means defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if cfg.Verbose, err = getVerboseFlag(cmd); err != nil {
		return nil, err
	}

	stringFlags := map[string]*string{
		"language":   &cfg.Language,
		"api-url":    &cfg.APIURL,
		"user-agent": &cfg.UserAgent,
		"token":      &cfg.Token,
		"proxy":      &cfg.ProxyAddress,
		"store-dir":  &cfg.StoreDir,
		"report":     &cfg.ReportFile,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	durationFlags := map[string]*time.Duration{
		"pacing":             &cfg.PacingInterval,
		"timeout":            &cfg.Timeout,
		"retry-initial":      &cfg.RetryInitialInterval,
		"retry-max-interval": &cfg.RetryMaxInterval,
	}
	for name, dst := range durationFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetDuration(name); err != nil {
			return nil, err
		}
	}

	intFlags := map[string]*int{
		"batch":         &cfg.BatchSize,
		"max-in-flight": &cfg.MaxInFlight,
	}
	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetInt(name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("retry-max-attempts") {
		if cfg.RetryMaxAttempts, err = flags.GetUint64("retry-max-attempts"); err != nil {
			return nil, err
		}
	}

	if cfg.FromTitles, err = flags.GetBool("from-titles"); err != nil {
		return nil, err
	}

	cfg.Category = args[0]
	cfg.TitlesFile = args[1]
	cfg.CorpusFile = args[2]
	cfg.StatsFile = args[3]

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) (bool, error) {
	if f := cmd.Flags().Lookup("verbose"); f != nil {
		return cmd.Flags().GetBool("verbose")
	}
	return cmd.Root().PersistentFlags().GetBool("verbose")
}

// runCrawl builds the client and pipeline, runs them and prints the summary.
func runCrawl(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	endpoint, err := cfg.Endpoint()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	client, err := wiki.NewClient(endpoint,
		wiki.WithTimeout(cfg.Timeout),
		wiki.WithUserAgent(cfg.UserAgent),
		wiki.WithToken(cfg.Token),
		wiki.WithProxy(cfg.ProxyAddress),
		wiki.WithMaxBodySize(cfg.MaxBodySize),
		wiki.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	now := time.Now()
	id, err := model.NewRunID(now)
	if err != nil {
		return err
	}

	run := model.NewRun(id, cfg.Category, now)
	run.TitlesFile = cfg.TitlesFile
	run.CorpusFile = cfg.CorpusFile
	run.StatsFile = cfg.StatsFile

	logger.Info("starting crawl",
		"category", cfg.Category,
		"endpoint", endpoint,
		"run", run.ID,
		"storeDir", cfg.StoreDir,
		"batchSize", cfg.BatchSize,
		"pacing", cfg.PacingInterval,
		"fromTitles", cfg.FromTitles,
	)

	p := pipeline.DefaultPipeline(client, cfg, pipeline.WithLogger(logger))
	runErr := p.Execute(ctx, run)

	_, summaryErr := report.NewSimpleWriter(cmd.OutOrStdout()).Write(run)
	return errors.Join(runErr, summaryErr, writeReport(cfg.ReportFile, run))
}

// writeReport writes the run summary to path, creating parent directories.
// An empty path writes nothing.
func writeReport(path string, run *model.Run) error {
	if path == "" {
		return nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	_, werr := report.ForPath(path, f, getVersion()).Write(run)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("failed to write report: %w", werr)
	}
	return nil
}
