package cmd

import (
	"fmt"

	"github.com/jjenkins/irisplus/internal/model"
	"github.com/jjenkins/irisplus/internal/service"
	"github.com/jjenkins/irisplus/internal/store"
	"github.com/spf13/cobra"
)

var (
	importPages       int
	importVersion     string
	importDataIDs     []string
	importConcurrency int
	importLimit       int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Scrape the IRIS+ metric catalog into the database",
	Long: `Import walks the IRIS+ metric catalog pages, fetches every metric detail
page, parses its metadata and content sections, and stores the result.

Metrics that already exist are merged: a fresh scrape replaces the English
content while Korean translations are kept. A detail page that cannot be
fetched still records an unsuccessful placeholder.

Examples:
  # Import the whole catalog
  ./irisplus import

  # Import the first two catalog pages only
  ./irisplus import --pages 2

  # Re-scrape specific metrics
  ./irisplus import --data-id PI4060 --data-id OI1479`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().IntVarP(&importPages, "pages", "p", 0, "Number of catalog pages to read (default from config)")
	importCmd.Flags().StringVarP(&importVersion, "version", "v", "", "Catalog version to scrape (default from config)")
	importCmd.Flags().StringSliceVarP(&importDataIDs, "data-id", "d", nil, "Only import these metric ids")
	importCmd.Flags().IntVar(&importConcurrency, "concurrency", 0, "Concurrent detail page fetches (default from config)")
	importCmd.Flags().IntVarP(&importLimit, "limit", "l", 0, "Stop after this many metrics")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	client := service.NewIrisClient(service.ClientOptions{
		BaseURL:    cfg.Scraper.BaseURL,
		UserAgent:  cfg.Scraper.UserAgent,
		Timeout:    cfg.Scraper.Timeout.Duration,
		MaxRetries: cfg.Scraper.MaxRetries,
		Delay:      cfg.Scraper.Delay.Duration,
	})
	importer := service.NewImporter(client, service.NewParser(), store.NewMetricStore(db), store.NewRunStore(db))
	importer.SetCategories(
		model.MetricTypes.With(cfg.Categories.ExtraMetricTypes...),
		model.MetricLevels.With(cfg.Categories.ExtraMetricLevels...),
	)

	opts := service.ImportOptions{
		Pages:       valueOr(importPages, cfg.Scraper.Pages),
		Version:     importVersion,
		DataIDs:     importDataIDs,
		Concurrency: valueOr(importConcurrency, cfg.Scraper.Concurrency),
		Limit:       importLimit,
	}
	if opts.Version == "" {
		opts.Version = cfg.Scraper.Version
	}

	log.Info("starting import", "version", opts.Version, "pages", opts.Pages)
	stats, err := importer.Import(ctx, opts)
	if stats != nil {
		importer.PrintSummary(stats)
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("import cancelled")
		}
		return fmt.Errorf("import failed: %w", err)
	}

	if stats.Failed > 0 || stats.Conflicts > 0 {
		return fmt.Errorf("%d metrics failed and %d conflicted", stats.Failed, stats.Conflicts)
	}
	return nil
}

func valueOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
