package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jjenkins/irisplus/internal/model"
	"github.com/jjenkins/irisplus/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_Calculate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	metrics := store.NewMetricStore(db)
	runs := store.NewRunStore(db)
	ctx := context.Background()

	seedScraped(t, metrics, "PI4060", "Client Individuals: Total")
	_, err := metrics.Save(ctx, model.IrisMetric{
		TitleEN:   "Permanent Employees: Total",
		DataID:    "OI1479",
		ScrapedAt: model.TimePtr(scrapeTime),
		Success:   false,
	})
	require.NoError(t, err)

	run, err := runs.StartRun(ctx, store.RunKindImport, model.DefaultVersion)
	require.NoError(t, err)
	run.Total = 2
	require.NoError(t, runs.FinishRun(ctx, run, errors.New("interrupted")))

	stats, err := NewStatsService(metrics, runs).Calculate(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalMetrics)
	assert.Equal(t, 1, stats.Scraped)
	assert.Equal(t, 1, stats.ScrapeFailed)
	assert.Equal(t, 0, stats.Translated)
	assert.Equal(t, 2, stats.ByMetricType[""])
	require.NotNil(t, stats.LastScrapedAt)
	assert.True(t, scrapeTime.Equal(*stats.LastScrapedAt))

	require.Len(t, stats.Runs, 1)
	assert.Equal(t, run.ID.String(), stats.Runs[0].ID)
	assert.Equal(t, 2, stats.Runs[0].Total)
	require.NotNil(t, stats.Runs[0].Error)
	assert.Equal(t, "interrupted", *stats.Runs[0].Error)
}

func TestStatsService_CalculateEmpty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	stats, err := NewStatsService(store.NewMetricStore(db), store.NewRunStore(db)).Calculate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalMetrics)
	assert.Nil(t, stats.LastScrapedAt)
	assert.NotNil(t, stats.Runs)
	assert.Empty(t, stats.Runs)
}
