package model

import (
	"bytes"
	"fmt"
	"time"
)

// Merge combines a stored record with an incoming partial record.
//
// The scrape group (title_en, provenance, category metadata, en content,
// metric_history, related_metrics, scraped_at, version) is taken from a
// successful incoming scrape wholesale; a failed scrape only overlays the
// fields it actually carries. The translation group (title_ko, ko content,
// translated_at) is taken per field from incoming when supplied and kept from
// existing otherwise. id, data_id and created_at are never altered, success
// never regresses and updated_at never decreases.
func Merge(existing, incoming IrisMetric) (IrisMetric, error) {
	return MergeAt(existing, incoming, time.Now().UTC())
}

// MergeAt is Merge with an explicit clock for updated_at
func MergeAt(existing, incoming IrisMetric, now time.Time) (IrisMetric, error) {
	if err := checkMerge(existing, incoming); err != nil {
		return IrisMetric{}, err
	}

	out := existing
	scraped := incoming.ScrapedAt != nil

	switch {
	case scraped && incoming.Success:
		if incoming.TitleEN != "" {
			out.TitleEN = incoming.TitleEN
		}
		out.RelativePath = incoming.RelativePath
		out.DetailURL = incoming.DetailURL
		out.ReportingFormat = incoming.ReportingFormat
		out.MetricType = incoming.MetricType
		out.MetricLevel = incoming.MetricLevel
		out.IrisCitation = incoming.IrisCitation
		out.MetricHistory = cloneRaw(incoming.MetricHistory)
		out.RelatedMetrics = cloneRaw(incoming.RelatedMetrics)
		out.ScrapedAt = incoming.ScrapedAt
	case scraped:
		if incoming.TitleEN != "" {
			out.TitleEN = incoming.TitleEN
		}
		out.RelativePath = overlay(out.RelativePath, incoming.RelativePath)
		out.DetailURL = overlay(out.DetailURL, incoming.DetailURL)
		out.ReportingFormat = overlay(out.ReportingFormat, incoming.ReportingFormat)
		out.MetricType = overlay(out.MetricType, incoming.MetricType)
		out.MetricLevel = overlay(out.MetricLevel, incoming.MetricLevel)
		out.IrisCitation = overlay(out.IrisCitation, incoming.IrisCitation)
		if len(incoming.MetricHistory) > 0 {
			out.MetricHistory = cloneRaw(incoming.MetricHistory)
		}
		if len(incoming.RelatedMetrics) > 0 {
			out.RelatedMetrics = cloneRaw(incoming.RelatedMetrics)
		}
		out.ScrapedAt = incoming.ScrapedAt
	}
	if scraped && incoming.Version != "" {
		out.Version = incoming.Version
	}

	out.Definition = mergeContent(existing.Definition, incoming.Definition, scraped, incoming.Success)
	out.UsageGuidance = mergeContent(existing.UsageGuidance, incoming.UsageGuidance, scraped, incoming.Success)
	out.ImpactCategories = mergeContent(existing.ImpactCategories, incoming.ImpactCategories, scraped, incoming.Success)
	out.SdgGoals = mergeContent(existing.SdgGoals, incoming.SdgGoals, scraped, incoming.Success)

	if incoming.TitleKO != nil {
		out.TitleKO = incoming.TitleKO
	}
	if incoming.TranslatedAt != nil {
		out.TranslatedAt = incoming.TranslatedAt
	}

	out.Success = existing.Success || incoming.Success

	out.ID = existing.ID
	out.DataID = existing.DataID
	out.CreatedAt = existing.CreatedAt
	out.UpdatedAt = now
	if now.Before(existing.UpdatedAt) {
		out.UpdatedAt = existing.UpdatedAt
	}

	return out, nil
}

func checkMerge(existing, incoming IrisMetric) error {
	var reasons []string

	if incoming.DataID != "" && incoming.DataID != existing.DataID {
		reasons = append(reasons, fmt.Sprintf("data_id %q does not match stored %q", incoming.DataID, existing.DataID))
	}

	if incoming.ScrapedAt != nil && existing.ScrapedAt != nil && incoming.ScrapedAt.Before(*existing.ScrapedAt) {
		reasons = append(reasons, "scraped_at is older than the stored scrape")
	}

	hasKorean := incoming.HasKorean()
	switch {
	case hasKorean && incoming.TranslatedAt == nil:
		reasons = append(reasons, "Korean content supplied without translated_at")
	case !hasKorean && incoming.TranslatedAt != nil:
		reasons = append(reasons, "translated_at supplied without Korean content")
	}

	if incoming.TranslatedAt != nil {
		effective := existing.ScrapedAt
		if incoming.ScrapedAt != nil {
			effective = incoming.ScrapedAt
		}
		switch {
		case incoming.ScrapedAt != nil && incoming.TranslatedAt.Before(*incoming.ScrapedAt):
			reasons = append(reasons, "translated_at is earlier than scraped_at")
		case effective != nil && incoming.TranslatedAt.Before(*effective):
			reasons = append(reasons, "translation is older than the stored scrape")
		case existing.TranslatedAt != nil && incoming.TranslatedAt.Before(*existing.TranslatedAt):
			reasons = append(reasons, "translated_at is older than the stored translation")
		}
	}

	if len(reasons) > 0 {
		return &ConflictError{DataID: existing.DataID, Reasons: reasons}
	}
	return nil
}

// mergeContent splits a multilingual field into its en (scrape) and ko
// (translation) halves and merges each with its own group's rule.
func mergeContent(existing, incoming *MultiLanguageContent, scraped, success bool) *MultiLanguageContent {
	en := existing.Slot(LangEN)
	switch {
	case scraped && success:
		en = incoming.Slot(LangEN)
	case scraped:
		if in := incoming.Slot(LangEN); in != nil {
			en = in
		}
	}

	ko := existing.Slot(LangKO)
	if in := incoming.Slot(LangKO); in != nil {
		ko = in
	}

	if en == nil && ko == nil {
		return nil
	}
	return &MultiLanguageContent{EN: en, KO: ko}
}

func overlay(current, incoming *string) *string {
	if incoming != nil && *incoming != "" {
		return incoming
	}
	return current
}

func cloneRaw(raw []byte) []byte {
	if raw == nil {
		return nil
	}
	return bytes.Clone(raw)
}
