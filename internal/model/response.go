package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MetricsResponse is the envelope for a list of metrics. Exactly one of Data
// (non-empty) and Error is set.
type MetricsResponse struct {
	Data  []IrisMetric `json:"data"`
	Count int          `json:"count"`
	Error *string      `json:"error"`
}

// SingleMetricResponse is the envelope for one metric. Exactly one of Data
// and Error is set.
type SingleMetricResponse struct {
	Data  *IrisMetric `json:"data"`
	Error *string     `json:"error"`
}

// NewMetricsResponse wraps a search result. count is the total number of
// matches, which may exceed len(data) when paging. An empty result becomes an
// error envelope.
func NewMetricsResponse(data []IrisMetric, count int) MetricsResponse {
	if len(data) == 0 {
		return MetricsErrorResponse(errors.New("no metrics found"))
	}
	return MetricsResponse{Data: data, Count: count}
}

// MetricsErrorResponse builds the error form of MetricsResponse
func MetricsErrorResponse(err error) MetricsResponse {
	msg := err.Error()
	return MetricsResponse{Error: &msg}
}

// NewSingleMetricResponse wraps one metric
func NewSingleMetricResponse(m IrisMetric) SingleMetricResponse {
	return SingleMetricResponse{Data: &m}
}

// SingleMetricErrorResponse builds the error form of SingleMetricResponse.
// Not-found errors are reported with the bare "not found" message.
func SingleMetricErrorResponse(err error) SingleMetricResponse {
	msg := err.Error()
	if errors.Is(err, ErrNotFound) {
		msg = ErrNotFound.Error()
	}
	return SingleMetricResponse{Error: &msg}
}

// Validate enforces that exactly one of data and error is present
func (r MetricsResponse) Validate() error {
	hasData := len(r.Data) > 0
	hasError := r.Error != nil
	errs := validation.Errors{}
	switch {
	case hasData && hasError:
		errs["error"] = validation.NewError("validation_envelope_both", "must be null when data is present")
	case !hasData && !hasError:
		errs["data"] = validation.NewError("validation_envelope_empty", "is required when error is null")
	}
	if hasData && r.Count < len(r.Data) {
		errs["count"] = validation.NewError("validation_envelope_count", "must not be less than the number of records")
	}
	if hasError && r.Count != 0 {
		errs["count"] = validation.NewError("validation_envelope_count", "must be zero for an error response")
	}
	return newValidationError(errs)
}

// Validate enforces that exactly one of data and error is present
func (r SingleMetricResponse) Validate() error {
	errs := validation.Errors{}
	switch {
	case r.Data != nil && r.Error != nil:
		errs["error"] = validation.NewError("validation_envelope_both", "must be null when data is present")
	case r.Data == nil && r.Error == nil:
		errs["data"] = validation.NewError("validation_envelope_empty", "is required when error is null")
	}
	return newValidationError(errs)
}
