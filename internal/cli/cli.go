package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hautrelief/tilmeld-feeds/internal/config"
	"github.com/hautrelief/tilmeld-feeds/internal/fetch"
	"github.com/hautrelief/tilmeld-feeds/internal/logger"
	"github.com/hautrelief/tilmeld-feeds/internal/scraper"
	"github.com/hautrelief/tilmeld-feeds/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagSourcesFile string
	flagOutDir      string
	flagConfig      string
	flagVerbose     bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tilmeld-feeds [source-url...]",
		Short: "Scrape event sites into XML and RSS feeds",
		Long: `Scrapes event-listing websites that expose no structured feed and writes,
per site and combined, a custom event-schema XML document and an RSS 2.0
feed. Sources are listing URLs given as arguments or read from a sources
file (one URL per line, # comments).`,
		RunE: runScrape,
	}

	cmd.Flags().StringVar(&flagSourcesFile, "sources", "sources.txt", "File with source URLs, used when no arguments are given")
	cmd.Flags().StringVar(&flagOutDir, "out", "", "Output directory (default from config, \"out\")")
	cmd.Flags().StringVar(&flagConfig, "config", "", "Config file path")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	outDir := cfg.Output.Dir
	if flagOutDir != "" {
		outDir = flagOutDir
	}

	sources := args
	if len(sources) == 0 {
		sources, err = readSourcesFile(flagSourcesFile)
		if err != nil {
			return fmt.Errorf("no sources given and %s could not be read: %w", flagSourcesFile, err)
		}
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sources to scrape")
	}

	sc := scraper.New(fetch.New(cfg.Fetch), cfg.EventPathRegexp())

	stateDir := cfg.Output.StateDir
	if stateDir == "" {
		stateDir = filepath.Join(outDir, ".state")
	}
	store, err := storage.New(stateDir)
	if err != nil {
		return fmt.Errorf("opening state directory: %w", err)
	}

	run := &Run{
		Config:  cfg,
		Scraper: sc,
		OutDir:  outDir,
		Store:   store,
	}
	summary := run.Execute(cmd.Context(), sources)

	logger.Info("run finished", logger.Fields{
		"sites_ok":     summary.SitesOK,
		"sites_failed": summary.SitesFailed,
		"events":       summary.Events,
		"events_new":   summary.NewEvents,
		"counters":     logger.CountersSnapshot(),
	})

	return nil
}

// readSourcesFile reads one source URL per line, skipping blanks and
// #-comments.
func readSourcesFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSources(string(data)), nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
