package model

import (
	"fmt"
	"slices"
)

// CategorySet is an extensible allow-list of category labels. Membership is
// only advisory: values outside the set are reported, never rejected.
type CategorySet struct {
	values []string
}

// NewCategorySet builds a set from the given labels, dropping duplicates
func NewCategorySet(values ...string) CategorySet {
	return CategorySet{}.With(values...)
}

// With returns a copy of the set extended with extra labels
func (s CategorySet) With(extra ...string) CategorySet {
	out := CategorySet{values: slices.Clone(s.values)}
	for _, v := range extra {
		if v == "" || slices.Contains(out.values, v) {
			continue
		}
		out.values = append(out.values, v)
	}
	return out
}

// Contains reports whether v is a known label
func (s CategorySet) Contains(v string) bool {
	return slices.Contains(s.values, v)
}

// Values returns the labels in insertion order
func (s CategorySet) Values() []string {
	return slices.Clone(s.values)
}

// Known metric_type and metric_level values of the IRIS+ catalog
var (
	MetricTypes  = NewCategorySet("Metric", "Product/Service", "Organization")
	MetricLevels = NewCategorySet("Product/Service", "Organization")
)

// CheckCategories returns a warning for each categorical field of m whose
// value is not in the corresponding set.
func CheckCategories(m *IrisMetric, types, levels CategorySet) []string {
	var warnings []string
	if m.MetricType != nil && !types.Contains(*m.MetricType) {
		warnings = append(warnings, fmt.Sprintf("unknown metric_type %q", *m.MetricType))
	}
	if m.MetricLevel != nil && !levels.Contains(*m.MetricLevel) {
		warnings = append(warnings, fmt.Sprintf("unknown metric_level %q", *m.MetricLevel))
	}
	return warnings
}
