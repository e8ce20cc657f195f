package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/irisplus/internal/model"
	"github.com/jjenkins/irisplus/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scrapedAt = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	app     *fiber.App
	metrics *store.MetricStore
	db      *store.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := store.NewDB("sqlite://" + filepath.Join(t.TempDir(), "iris.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	require.NoError(t, store.Migrate(context.Background(), db))

	app := fiber.New()
	Register(app, db)
	return &testEnv{app: app, metrics: store.NewMetricStore(db), db: db}
}

func (e *testEnv) seed(t *testing.T, dataID, title, metricType string, categories ...string) model.IrisMetric {
	t.Helper()

	m := model.IrisMetric{
		TitleEN:    title,
		DataID:     dataID,
		MetricType: model.StringPtr(metricType),
		ScrapedAt:  model.TimePtr(scrapedAt),
		Success:    true,
		Version:    model.DefaultVersion,
	}
	if len(categories) > 0 {
		block := model.ContentData{Title: "Impact Categories"}
		for _, c := range categories {
			block.Content.Headings = append(block.Content.Headings, model.HeadingItem{Tag: "h4", Text: c})
		}
		block = model.Normalize(block)
		m.ImpactCategories = &model.MultiLanguageContent{EN: &block}
	}

	res, err := e.metrics.Save(context.Background(), m)
	require.NoError(t, err)
	return res.Metric
}

func (e *testEnv) get(t *testing.T, target string, out any) int {
	t.Helper()

	resp, err := e.app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func TestMetricsHandler_Search(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seed(t, "PI4060", "Client Individuals: Total", "Metric", "Financial Services")
	env.seed(t, "OI1479", "Permanent Employees: Total", "Organization")
	env.seed(t, "PI8330", "Client Individuals: Female", "Metric", "Health")

	var resp model.MetricsResponse
	status := env.get(t, "/api/metrics?metric_type=Metric&limit=10&offset=0", &resp)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, resp.Validate())
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Data, 2)
	for _, m := range resp.Data {
		assert.Equal(t, "Metric", *m.MetricType)
	}

	resp = model.MetricsResponse{}
	status = env.get(t, "/api/metrics?impact_category=Health", &resp)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "PI8330", resp.Data[0].DataID)

	resp = model.MetricsResponse{}
	status = env.get(t, "/api/metrics?limit=1", &resp)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 3, resp.Count)
}

func TestMetricsHandler_NoMatches(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seed(t, "PI4060", "Client Individuals: Total", "Metric")

	var resp model.MetricsResponse
	status := env.get(t, "/api/metrics?title=nothing-like-this", &resp)
	assert.Equal(t, fiber.StatusNotFound, status)
	require.NoError(t, resp.Validate())
	require.NotNil(t, resp.Error)
	assert.Equal(t, "no metrics found", *resp.Error)
	assert.Empty(t, resp.Data)
}

func TestMetricsHandler_BadParams(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	for _, target := range []string{
		"/api/metrics?limit=abc",
		"/api/metrics?limit=-1",
		"/api/metrics?limit=" + strconv.Itoa(model.MaxSearchLimit+1),
		"/api/metrics?offset=-5",
	} {
		var resp model.MetricsResponse
		status := env.get(t, target, &resp)
		assert.Equal(t, fiber.StatusBadRequest, status, target)
		assert.NotNil(t, resp.Error, target)
	}
}

func TestMetricByIDHandler(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	seeded := env.seed(t, "PI4060", "Client Individuals: Total", "Metric")

	var resp model.SingleMetricResponse
	status := env.get(t, "/api/metrics/"+strconv.FormatInt(seeded.ID, 10), &resp)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, resp.Validate())
	assert.Equal(t, "PI4060", resp.Data.DataID)
	assert.Nil(t, resp.Error)

	resp = model.SingleMetricResponse{}
	status = env.get(t, "/api/metrics/999999", &resp)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "not found", *resp.Error)

	resp = model.SingleMetricResponse{}
	status = env.get(t, "/api/metrics/abc", &resp)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestMetricByDataIDHandler(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seed(t, "PI4060", "Client Individuals: Total", "Metric")

	var resp model.SingleMetricResponse
	status := env.get(t, "/api/metrics/data/PI4060", &resp)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Client Individuals: Total", resp.Data.TitleEN)

	resp = model.SingleMetricResponse{}
	status = env.get(t, "/api/metrics/data/XX0000", &resp)
	assert.Equal(t, fiber.StatusNotFound, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "not found", *resp.Error)
}

func TestSummaryHandlers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	summaries := store.NewSummaryStore(env.db)
	ctx := context.Background()
	require.NoError(t, summaries.ReplaceImpactCategories(ctx, []model.ImpactCategorySummary{
		{Rank: 2, CategoryEN: "Health", MetricCount: 30},
		{Rank: 1, CategoryEN: "Financial Services", MetricCount: 42},
	}))
	require.NoError(t, summaries.ReplaceSdgGoals(ctx, []model.SdgGoalSummary{
		{SdgEN: "Quality Education", MetricCount: 12},
		{SdgEN: "No Poverty", MetricCount: 55},
	}))

	var categories struct {
		Data  []model.ImpactCategorySummary `json:"data"`
		Count int                           `json:"count"`
	}
	status := env.get(t, "/api/summaries/impact-categories", &categories)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, categories.Data, 2)
	assert.Equal(t, "Financial Services", categories.Data[0].CategoryEN)
	assert.Equal(t, 2, categories.Count)

	var goals struct {
		Data []model.SdgGoalSummary `json:"data"`
	}
	status = env.get(t, "/api/summaries/sdg-goals", &goals)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, goals.Data, 2)
	assert.Equal(t, "No Poverty", goals.Data[0].SdgEN)
}

func TestStatsAndHealthHandlers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seed(t, "PI4060", "Client Individuals: Total", "Metric")

	var stats struct {
		Data struct {
			TotalMetrics int            `json:"total_metrics"`
			Scraped      int            `json:"scraped"`
			ByMetricType map[string]int `json:"by_metric_type"`
		} `json:"data"`
	}
	status := env.get(t, "/api/stats", &stats)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, stats.Data.TotalMetrics)
	assert.Equal(t, 1, stats.Data.Scraped)
	assert.Equal(t, 1, stats.Data.ByMetricType["Metric"])

	var health map[string]string
	status = env.get(t, "/healthz", &health)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", health["status"])
}
