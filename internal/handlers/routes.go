package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/irisplus/internal/service"
	"github.com/jjenkins/irisplus/internal/store"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("handlers")

// Register mounts the query API on app
func Register(app *fiber.App, db *store.DB) {
	metricStore := store.NewMetricStore(db)
	summaryStore := store.NewSummaryStore(db)
	statsService := service.NewStatsService(metricStore, store.NewRunStore(db))

	app.Get("/healthz", HealthHandler(db))

	api := app.Group("/api")

	// Metric routes
	api.Get("/metrics", MetricsHandler(metricStore))
	api.Get("/metrics/data/:dataId", MetricByDataIDHandler(metricStore))
	api.Get("/metrics/:id", MetricByIDHandler(metricStore))

	// Summary routes
	api.Get("/summaries/impact-categories", ImpactCategoriesHandler(summaryStore))
	api.Get("/summaries/sdg-goals", SdgGoalsHandler(summaryStore))

	api.Get("/stats", StatsHandler(statsService))
}
