package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jjenkins/irisplus/internal/model"
	"github.com/jjenkins/irisplus/internal/store"
)

// searchFilters maps query parameters onto MetricSearchParams text fields
var searchFilters = []struct {
	key   string
	field func(*model.MetricSearchParams) **string
}{
	{"title", func(p *model.MetricSearchParams) **string { return &p.Title }},
	{"data_id", func(p *model.MetricSearchParams) **string { return &p.DataID }},
	{"metric_type", func(p *model.MetricSearchParams) **string { return &p.MetricType }},
	{"metric_level", func(p *model.MetricSearchParams) **string { return &p.MetricLevel }},
	{"impact_category", func(p *model.MetricSearchParams) **string { return &p.ImpactCategory }},
	{"sdg_goal", func(p *model.MetricSearchParams) **string { return &p.SdgGoal }},
}

// MetricsHandler serves filtered, paged metric searches
func MetricsHandler(metricStore *store.MetricStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params, err := parseSearchParams(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(model.MetricsErrorResponse(err))
		}

		metrics, total, err := metricStore.Search(c.UserContext(), params)
		switch {
		case errors.Is(err, model.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(model.MetricsErrorResponse(err))
		case err != nil:
			log.Error("metric search failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(model.MetricsErrorResponse(errors.New("error loading metrics")))
		}

		resp := model.NewMetricsResponse(metrics, total)
		if resp.Error != nil {
			return c.Status(fiber.StatusNotFound).JSON(resp)
		}
		return c.JSON(resp)
	}
}

func parseSearchParams(c *fiber.Ctx) (model.MetricSearchParams, error) {
	var params model.MetricSearchParams
	for _, f := range searchFilters {
		if v := c.Query(f.key); v != "" {
			*f.field(&params) = &v
		}
	}

	var err error
	if params.Limit, err = queryInt(c, "limit"); err != nil {
		return params, err
	}
	if params.Offset, err = queryInt(c, "offset"); err != nil {
		return params, err
	}
	return params, nil
}

func queryInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New("invalid " + key + ": must be an integer")
	}
	return &n, nil
}

// MetricByIDHandler serves a single metric by its surrogate id
func MetricByIDHandler(metricStore *store.MetricStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(model.SingleMetricErrorResponse(errors.New("invalid metric id")))
		}

		metric, err := metricStore.GetByID(c.UserContext(), id)
		return singleMetric(c, metric, err)
	}
}

// MetricByDataIDHandler serves a single metric by its catalog id
func MetricByDataIDHandler(metricStore *store.MetricStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		metric, err := metricStore.GetByDataID(c.UserContext(), c.Params("dataId"))
		return singleMetric(c, metric, err)
	}
}

func singleMetric(c *fiber.Ctx, metric *model.IrisMetric, err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(model.SingleMetricErrorResponse(err))
	case err != nil:
		log.Error("metric lookup failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(model.SingleMetricErrorResponse(errors.New("error loading metric")))
	}
	return c.JSON(model.NewSingleMetricResponse(*metric))
}
