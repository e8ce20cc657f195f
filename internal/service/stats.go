package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jjenkins/irisplus/internal/store"
)

// CatalogStats represents catalog-wide lifecycle statistics
type CatalogStats struct {
	TotalMetrics     int            `json:"total_metrics"`
	Scraped          int            `json:"scraped"`
	ScrapeFailed     int            `json:"scrape_failed"`
	Translated       int            `json:"translated"`
	StaleTranslation int            `json:"stale_translation"`
	ByMetricType     map[string]int `json:"by_metric_type"`
	LastScrapedAt    *time.Time     `json:"last_scraped_at"`
	Runs             []RunSummary   `json:"runs"`
}

// RunSummary is the public view of one recorded import or translation run
type RunSummary struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Version    string     `json:"version,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Total      int        `json:"total"`
	Created    int        `json:"created"`
	Updated    int        `json:"updated"`
	Failed     int        `json:"failed"`
	Conflicts  int        `json:"conflicts"`
	Error      *string    `json:"error,omitempty"`
}

const defaultRecentRuns = 5

// StatsService calculates catalog statistics
type StatsService struct {
	metrics *store.MetricStore
	runs    *store.RunStore
}

// NewStatsService creates a new StatsService
func NewStatsService(metrics *store.MetricStore, runs *store.RunStore) *StatsService {
	return &StatsService{metrics: metrics, runs: runs}
}

// Calculate gathers lifecycle counts and the most recent runs
func (s *StatsService) Calculate(ctx context.Context) (*CatalogStats, error) {
	counts, err := s.metrics.Counts(ctx)
	if err != nil {
		return nil, err
	}

	stats := &CatalogStats{
		TotalMetrics:     counts.Total,
		Scraped:          counts.Succeeded,
		ScrapeFailed:     counts.Failed,
		Translated:       counts.Translated,
		StaleTranslation: counts.Stale,
		ByMetricType:     counts.ByType,
		LastScrapedAt:    counts.LastScraped,
		Runs:             []RunSummary{},
	}

	runs, err := s.runs.LatestRuns(ctx, defaultRecentRuns)
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		stats.Runs = append(stats.Runs, RunSummary{
			ID:         r.ID.String(),
			Kind:       r.Kind,
			Version:    r.Version,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			Total:      r.Total,
			Created:    r.Created,
			Updated:    r.Updated,
			Failed:     r.Failed,
			Conflicts:  r.Conflicts,
			Error:      r.Error,
		})
	}

	return stats, nil
}

// PrintStats prints catalog statistics in the summary block format
func (s *StatsService) PrintStats(stats *CatalogStats) {
	log.Info("")
	log.Info("=== Catalog Stats ===")
	log.Info(fmt.Sprintf("Total metrics:     %d", stats.TotalMetrics))
	log.Info(fmt.Sprintf("Scraped:           %d", stats.Scraped))
	log.Info(fmt.Sprintf("Scrape failed:     %d", stats.ScrapeFailed))
	log.Info(fmt.Sprintf("Translated:        %d", stats.Translated))
	log.Info(fmt.Sprintf("Stale translation: %d", stats.StaleTranslation))
	if stats.LastScrapedAt != nil {
		log.Info(fmt.Sprintf("Last scraped:      %s", stats.LastScrapedAt.Format(time.RFC3339)))
	}

	types := make([]string, 0, len(stats.ByMetricType))
	for t := range stats.ByMetricType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		label := t
		if label == "" {
			label = "(none)"
		}
		log.Info(fmt.Sprintf("  %-16s %d", label+":", stats.ByMetricType[t]))
	}
}
