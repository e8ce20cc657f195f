package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jjenkins/irisplus/internal/model"
	"github.com/jjenkins/irisplus/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryService_LoadFile(t *testing.T) {
	t.Parallel()

	summaries := store.NewSummaryStore(newTestDB(t))
	svc := NewSummaryService(summaries)
	ctx := context.Background()

	file, err := svc.LoadFile(ctx, filepath.Join("testdata", "summaries.json"))
	require.NoError(t, err)
	assert.Len(t, file.ImpactCategories, 2)
	assert.Len(t, file.SdgGoals, 2)

	categories, err := summaries.ListImpactCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Financial Services", categories[0].CategoryEN)
	require.NotNil(t, categories[0].CategoryKO)
	assert.Equal(t, "금융 서비스", *categories[0].CategoryKO)
	assert.Equal(t, []string{"Metric", "Organization"}, categories[1].MetricTypes)
	assert.Empty(t, categories[1].SampleMetrics)

	goals, err := summaries.ListSdgGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.Equal(t, "No Poverty", goals[0].SdgEN)
	assert.Equal(t, 55, goals[0].MetricCount)
	assert.Nil(t, goals[1].SdgKO)
	assert.NotNil(t, goals[1].SampleMetrics)
}

func TestSummaryService_LoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	summaries := store.NewSummaryStore(newTestDB(t))
	svc := NewSummaryService(summaries)
	ctx := context.Background()

	_, err := svc.LoadFile(ctx, filepath.Join("testdata", "summaries.json"))
	require.NoError(t, err)

	tests := map[string]SummaryFile{
		"zero rank": {
			ImpactCategories: []model.ImpactCategorySummary{{Rank: 0, CategoryEN: "Health"}},
		},
		"negative count": {
			SdgGoals: []model.SdgGoalSummary{{SdgEN: "No Poverty", MetricCount: -1}},
		},
		"duplicate goal": {
			SdgGoals: []model.SdgGoalSummary{{SdgEN: "No Poverty"}, {SdgEN: "No Poverty"}},
		},
	}
	for name, file := range tests {
		err := svc.Load(ctx, file)
		assert.Error(t, err, name)
	}

	categories, err := summaries.ListImpactCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
	goals, err := summaries.ListSdgGoals(ctx)
	require.NoError(t, err)
	assert.Len(t, goals, 2)
}

func TestSummaryService_LoadFileMissing(t *testing.T) {
	t.Parallel()

	svc := NewSummaryService(store.NewSummaryStore(newTestDB(t)))
	_, err := svc.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
