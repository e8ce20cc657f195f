package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jjenkins/irisplus/internal/model"
	"github.com/jjenkins/irisplus/internal/store"
	logger "github.com/multiversx/mx-chain-logger-go"
	"golang.org/x/sync/errgroup"
)

var log = logger.GetOrCreate("service")

const defaultConcurrency = 4

// ImportOptions controls which part of the catalog an import walks
type ImportOptions struct {
	// Pages is the number of catalog pages to read, starting at page 1
	Pages   int
	Version string
	// DataIDs restricts the import to these metrics when non-empty
	DataIDs     []string
	Concurrency int
	// Limit caps the number of metrics imported when positive
	Limit int
}

// ImportStats tracks import statistics
type ImportStats struct {
	Total        int
	Created      int
	Updated      int
	Failed       int
	Placeholders int
	Conflicts    int
	PageErrors   int
	Warnings     int
}

// Importer orchestrates the IRIS+ catalog import process
type Importer struct {
	client  *IrisClient
	parser  *Parser
	metrics *store.MetricStore
	runs    *store.RunStore
	types   model.CategorySet
	levels  model.CategorySet

	mu sync.Mutex
}

// NewImporter creates a new Importer. runs may be nil, in which case the
// import is not recorded.
func NewImporter(client *IrisClient, parser *Parser, metrics *store.MetricStore, runs *store.RunStore) *Importer {
	return &Importer{
		client:  client,
		parser:  parser,
		metrics: metrics,
		runs:    runs,
		types:   model.MetricTypes,
		levels:  model.MetricLevels,
	}
}

// SetCategories replaces the allow-lists used for category warnings
func (i *Importer) SetCategories(types, levels model.CategorySet) {
	i.types = types
	i.levels = levels
}

// Import walks the catalog pages, scrapes every listed metric and stores it.
// A detail page that cannot be fetched or parsed still produces an
// unsuccessful placeholder record.
func (i *Importer) Import(ctx context.Context, opts ImportOptions) (stats *ImportStats, err error) {
	stats = &ImportStats{}
	if opts.Version == "" {
		opts.Version = model.DefaultVersion
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}

	if i.runs != nil {
		run, startErr := i.runs.StartRun(ctx, store.RunKindImport, opts.Version)
		if startErr != nil {
			return nil, startErr
		}
		defer func() {
			run.Total = stats.Total
			run.Created = stats.Created
			run.Updated = stats.Updated
			run.Failed = stats.Failed
			run.Placeholders = stats.Placeholders
			run.Conflicts = stats.Conflicts
			// the run is closed even when ctx was cancelled
			if finishErr := i.runs.FinishRun(context.WithoutCancel(ctx), run, err); finishErr != nil {
				log.Error("failed to record import run", "run", run.ID.String(), "error", finishErr)
			}
		}()
	}

	log.Info("fetching catalog pages", "pages", opts.Pages, "base", i.client.BaseURL())
	entries, err := i.collectEntries(ctx, opts.Pages, stats)
	if err != nil {
		return stats, err
	}
	entries = filterEntries(entries, opts.DataIDs, opts.Limit)

	stats.Total = len(entries)
	log.Info("found metrics to process", "count", stats.Total, "version", opts.Version)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for idx, entry := range entries {
		entry := entry
		progress := fmt.Sprintf("[%d/%d]", idx+1, stats.Total)
		g.Go(func() error {
			return i.importEntry(gctx, entry, opts.Version, progress, stats)
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

// collectEntries reads the catalog pages in order. A page that cannot be
// fetched or parsed is logged and skipped.
func (i *Importer) collectEntries(ctx context.Context, pages int, stats *ImportStats) ([]CatalogEntry, error) {
	seen := make(map[string]struct{})
	var entries []CatalogEntry

	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := i.client.FetchCatalogPage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Error("failed to fetch catalog page", "page", page, "error", err)
			stats.PageErrors++
			continue
		}

		pageEntries, err := i.parser.ParseCatalogPage(body)
		if err != nil {
			log.Error("failed to parse catalog page", "page", page, "error", err)
			stats.PageErrors++
			continue
		}

		for _, e := range pageEntries {
			if _, ok := seen[e.DataID]; ok {
				continue
			}
			seen[e.DataID] = struct{}{}
			entries = append(entries, e)
		}
		log.Debug("catalog page read", "page", page, "metrics", len(pageEntries))
	}

	return entries, nil
}

func filterEntries(entries []CatalogEntry, dataIDs []string, limit int) []CatalogEntry {
	if len(dataIDs) > 0 {
		wanted := make(map[string]struct{}, len(dataIDs))
		for _, id := range dataIDs {
			wanted[strings.ToUpper(strings.TrimSpace(id))] = struct{}{}
		}
		filtered := entries[:0:0]
		for _, e := range entries {
			if _, ok := wanted[strings.ToUpper(e.DataID)]; ok {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// importEntry scrapes and stores one metric. Only cancellation is returned
// as an error; everything else is counted and logged.
func (i *Importer) importEntry(ctx context.Context, entry CatalogEntry, version, progress string, stats *ImportStats) error {
	detailURL := i.client.DetailURL(version, entry.DataID)
	scrapedAt := time.Now().UTC()

	var incoming model.IrisMetric
	body, err := i.client.FetchDetailPage(ctx, detailURL)
	if err == nil {
		var detail *MetricDetail
		detail, err = i.parser.ParseDetailPage(body)
		if err == nil {
			incoming, err = BuildMetric(entry, detail, detailURL, version, scrapedAt)
		}
	}

	placeholder := false
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("storing placeholder for metric", "data_id", entry.DataID, "error", err)
		incoming = placeholderMetric(entry, detailURL, version, scrapedAt)
		placeholder = true
	}

	result, err := i.metrics.Save(ctx, incoming)

	i.mu.Lock()
	defer i.mu.Unlock()

	switch {
	case err != nil && ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, model.ErrConflict):
		log.Error(progress+" conflicting metric rejected", "data_id", entry.DataID, "error", err)
		stats.Conflicts++
		return nil
	case err != nil:
		log.Error(progress+" failed to store metric", "data_id", entry.DataID, "error", err)
		stats.Failed++
		return nil
	}

	if placeholder {
		stats.Placeholders++
	}
	if result.Created {
		stats.Created++
	} else {
		stats.Updated++
	}

	for _, warning := range model.CheckCategories(&result.Metric, i.types, i.levels) {
		log.Warn(warning, "data_id", entry.DataID)
		stats.Warnings++
	}

	log.Info(progress+" imported metric", "data_id", entry.DataID, "title", result.Metric.TitleEN, "created", result.Created)
	return nil
}

// BuildMetric turns a parsed detail page into an incoming scraped record
func BuildMetric(entry CatalogEntry, detail *MetricDetail, detailURL, version string, scrapedAt time.Time) (model.IrisMetric, error) {
	history, err := encodeBlock(detail.MetricHistory)
	if err != nil {
		return model.IrisMetric{}, err
	}
	related, err := encodeBlock(detail.RelatedMetrics)
	if err != nil {
		return model.IrisMetric{}, err
	}

	return model.IrisMetric{
		TitleEN:          entry.Title,
		DataID:           entry.DataID,
		RelativePath:     model.StringPtr(entry.RelativePath),
		DetailURL:        model.StringPtr(detailURL),
		ReportingFormat:  model.StringPtr(detail.ReportingFormat),
		MetricType:       model.StringPtr(detail.MetricType),
		MetricLevel:      model.StringPtr(detail.MetricLevel),
		IrisCitation:     model.StringPtr(detail.IrisCitation),
		Definition:       english(detail.Definition),
		UsageGuidance:    english(detail.UsageGuidance),
		ImpactCategories: english(detail.ImpactCategories),
		SdgGoals:         english(detail.SdgGoals),
		MetricHistory:    history,
		RelatedMetrics:   related,
		ScrapedAt:        model.TimePtr(scrapedAt),
		Success:          true,
		Version:          version,
	}, nil
}

func placeholderMetric(entry CatalogEntry, detailURL, version string, scrapedAt time.Time) model.IrisMetric {
	return model.IrisMetric{
		TitleEN:      entry.Title,
		DataID:       entry.DataID,
		RelativePath: model.StringPtr(entry.RelativePath),
		DetailURL:    model.StringPtr(detailURL),
		ScrapedAt:    model.TimePtr(scrapedAt),
		Success:      false,
		Version:      version,
	}
}

func english(block *model.ContentData) *model.MultiLanguageContent {
	if block == nil {
		return nil
	}
	return &model.MultiLanguageContent{EN: block}
}

func encodeBlock(block *model.ContentData) (json.RawMessage, error) {
	if block == nil {
		return nil, nil
	}
	b, err := json.Marshal(block)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", block.Title, err)
	}
	return b, nil
}

// PrintSummary prints the import statistics
func (i *Importer) PrintSummary(stats *ImportStats) {
	log.Info("")
	log.Info("=== Import Summary ===")
	log.Info(fmt.Sprintf("Total metrics:   %d", stats.Total))
	log.Info(fmt.Sprintf("Created:         %d", stats.Created))
	log.Info(fmt.Sprintf("Updated:         %d", stats.Updated))
	log.Info(fmt.Sprintf("Placeholders:    %d (scrape failed)", stats.Placeholders))
	log.Info(fmt.Sprintf("Conflicts:       %d", stats.Conflicts))
	log.Info(fmt.Sprintf("Failed:          %d", stats.Failed))
	log.Info(fmt.Sprintf("Page errors:     %d", stats.PageErrors))
	log.Info(fmt.Sprintf("Category warns:  %d", stats.Warnings))

	if stats.Total > 0 {
		scraped := stats.Created + stats.Updated - stats.Placeholders
		successRate := float64(scraped) / float64(stats.Total) * 100
		log.Info(fmt.Sprintf("Success rate:    %.1f%%", successRate))
	}
}
