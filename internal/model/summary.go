package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ImpactCategorySummary is the per-impact-category aggregate produced by the
// aggregation step. It is read-only in this repository.
type ImpactCategorySummary struct {
	Rank          int      `json:"rank"`
	CategoryEN    string   `json:"category_en"`
	CategoryKO    *string  `json:"category_ko,omitempty"`
	MetricCount   int      `json:"metric_count"`
	MetricTypes   []string `json:"metric_types"`
	SampleMetrics []string `json:"sample_metrics"`
}

// SdgGoalSummary is the per-SDG aggregate produced by the aggregation step
type SdgGoalSummary struct {
	SdgEN         string   `json:"sdg_en"`
	SdgKO         *string  `json:"sdg_ko,omitempty"`
	MetricCount   int      `json:"metric_count"`
	SampleMetrics []string `json:"sample_metrics"`
}

// Validate checks the shape of an impact category summary
func (s ImpactCategorySummary) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Rank, validation.Required, validation.Min(1)),
		validation.Field(&s.CategoryEN, notBlank),
		validation.Field(&s.MetricCount, validation.Min(0)),
		validation.Field(&s.MetricTypes, validation.Each(notBlank)),
		validation.Field(&s.SampleMetrics, validation.Each(notBlank)),
	)
	return wrapStructErrors(err)
}

// Validate checks the shape of an SDG goal summary
func (s SdgGoalSummary) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.SdgEN, notBlank),
		validation.Field(&s.MetricCount, validation.Min(0)),
		validation.Field(&s.SampleMetrics, validation.Each(notBlank)),
	)
	return wrapStructErrors(err)
}

func wrapStructErrors(err error) error {
	if err == nil {
		return nil
	}
	if errs, ok := err.(validation.Errors); ok {
		return newValidationError(errs)
	}
	return err
}
