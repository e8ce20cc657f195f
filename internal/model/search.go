package model

import (
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Paging limits for metric searches
const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 500
)

// MetricSearchParams filters a metric search. A nil field adds no constraint
// and present fields are combined with AND.
type MetricSearchParams struct {
	// Title is a case-insensitive substring match on title_en or title_ko
	Title       *string `json:"title,omitempty"`
	DataID      *string `json:"data_id,omitempty"`
	MetricType  *string `json:"metric_type,omitempty"`
	MetricLevel *string `json:"metric_level,omitempty"`
	// ImpactCategory and SdgGoal match a heading of the English block
	ImpactCategory *string `json:"impact_category,omitempty"`
	SdgGoal        *string `json:"sdg_goal,omitempty"`
	Limit          *int    `json:"limit,omitempty"`
	Offset         *int    `json:"offset,omitempty"`
}

// Validate rejects negative paging values and limits above MaxSearchLimit
func (p MetricSearchParams) Validate() error {
	return newValidationError(validation.Errors{
		"limit":  validation.Validate(p.Limit, validation.Min(0), validation.Max(MaxSearchLimit)),
		"offset": validation.Validate(p.Offset, validation.Min(0)),
	})
}

// Normalized trims the text filters, drops the blank ones and fills in the
// default limit and offset.
func (p MetricSearchParams) Normalized() MetricSearchParams {
	out := MetricSearchParams{
		Title:          trimmedOrNil(p.Title),
		DataID:         trimmedOrNil(p.DataID),
		MetricType:     trimmedOrNil(p.MetricType),
		MetricLevel:    trimmedOrNil(p.MetricLevel),
		ImpactCategory: trimmedOrNil(p.ImpactCategory),
		SdgGoal:        trimmedOrNil(p.SdgGoal),
	}

	limit := DefaultSearchLimit
	if p.Limit != nil {
		limit = *p.Limit
	}
	offset := 0
	if p.Offset != nil {
		offset = *p.Offset
	}
	out.Limit = &limit
	out.Offset = &offset
	return out
}

// Matches reports whether m satisfies every present filter. Paging is ignored.
func (p MetricSearchParams) Matches(m *IrisMetric) bool {
	if p.Title != nil {
		needle := strings.ToLower(*p.Title)
		inKO := m.TitleKO != nil && strings.Contains(strings.ToLower(*m.TitleKO), needle)
		if !strings.Contains(strings.ToLower(m.TitleEN), needle) && !inKO {
			return false
		}
	}
	if p.DataID != nil && m.DataID != *p.DataID {
		return false
	}
	if p.MetricType != nil && (m.MetricType == nil || *m.MetricType != *p.MetricType) {
		return false
	}
	if p.MetricLevel != nil && (m.MetricLevel == nil || *m.MetricLevel != *p.MetricLevel) {
		return false
	}
	if p.ImpactCategory != nil && !slices.Contains(m.ImpactCategories.HeadingTexts(LangEN), *p.ImpactCategory) {
		return false
	}
	if p.SdgGoal != nil && !slices.Contains(m.SdgGoals.HeadingTexts(LangEN), *p.SdgGoal) {
		return false
	}
	return true
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	return StringPtr(strings.TrimSpace(*s))
}
