package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultVersion is the IRIS+ catalog release scraped by default
const DefaultVersion = "v5.3b"

// Language slots of a MultiLanguageContent
const (
	LangEN = "en"
	LangKO = "ko"
)

// List element tags accepted in a content block
const (
	ListUnordered = "ul"
	ListOrdered   = "ol"
)

// IrisMetric represents one row of the iris_metrics table
type IrisMetric struct {
	ID int64 `json:"id"`

	TitleEN      string  `json:"title_en"`
	TitleKO      *string `json:"title_ko"`
	DataID       string  `json:"data_id"`
	RelativePath *string `json:"relative_path"`
	DetailURL    *string `json:"detail_url"`

	ReportingFormat *string `json:"reporting_format"`
	MetricType      *string `json:"metric_type"`
	MetricLevel     *string `json:"metric_level"`
	IrisCitation    *string `json:"iris_citation"`

	Definition       *MultiLanguageContent `json:"definition"`
	UsageGuidance    *MultiLanguageContent `json:"usage_guidance"`
	ImpactCategories *MultiLanguageContent `json:"impact_categories"`
	SdgGoals         *MultiLanguageContent `json:"sdg_goals"`

	// Owned by the upstream producer; stored and returned verbatim.
	MetricHistory  json.RawMessage `json:"metric_history"`
	RelatedMetrics json.RawMessage `json:"related_metrics"`

	ScrapedAt    *time.Time `json:"scraped_at"`
	TranslatedAt *time.Time `json:"translated_at"`
	Success      bool       `json:"success"`
	Version      string     `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MultiLanguageContent holds the English and Korean renderings of a section
type MultiLanguageContent struct {
	EN *ContentData `json:"en"`
	KO *ContentData `json:"ko"`
}

// ContentData is one language's rendering of a documentation section
type ContentData struct {
	Title   string      `json:"title"`
	Content ContentBody `json:"content"`
}

// ContentBody holds the structured extraction of a section plus a plain-text fallback
type ContentBody struct {
	Paragraphs    []string       `json:"paragraphs"`
	Lists         []ListItem     `json:"lists"`
	Headings      []HeadingItem  `json:"headings"`
	OtherElements []OtherElement `json:"other_elements"`
	RawText       string         `json:"raw_text"`
}

// ListItem is a ul or ol element with its item texts
type ListItem struct {
	Type  string   `json:"type"`
	Items []string `json:"items"`
}

// HeadingItem is an h1-h6 element
type HeadingItem struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// OtherElement is a leaf element that was not captured as a paragraph, list or heading
type OtherElement struct {
	Tag   string   `json:"tag"`
	Text  string   `json:"text"`
	Class []string `json:"class"`
}

// Lifecycle states of a metric record
const (
	StateScrapedFailed = "scraped_failed"
	StateScraped       = "scraped"
	StateTranslated    = "translated"
)

// State reports where the record is in the scrape/translate lifecycle
func (m *IrisMetric) State() string {
	if m.TranslatedAt != nil {
		return StateTranslated
	}
	if m.Success {
		return StateScraped
	}
	return StateScrapedFailed
}

// TranslationStale is true when the record was re-scraped after its last translation
func (m *IrisMetric) TranslationStale() bool {
	return m.TranslatedAt != nil && m.ScrapedAt != nil && m.ScrapedAt.After(*m.TranslatedAt)
}

// ContentFields returns the four multilingual fields keyed by column name
func (m *IrisMetric) ContentFields() map[string]*MultiLanguageContent {
	return map[string]*MultiLanguageContent{
		"definition":        m.Definition,
		"usage_guidance":    m.UsageGuidance,
		"impact_categories": m.ImpactCategories,
		"sdg_goals":         m.SdgGoals,
	}
}

// HasKorean reports whether any translation-sourced content is present
func (m *IrisMetric) HasKorean() bool {
	if m.TitleKO != nil {
		return true
	}
	for _, c := range m.ContentFields() {
		if c != nil && c.KO != nil {
			return true
		}
	}
	return false
}

// Slot returns the block for the given language, or nil
func (c *MultiLanguageContent) Slot(lang string) *ContentData {
	if c == nil {
		return nil
	}
	switch lang {
	case LangEN:
		return c.EN
	case LangKO:
		return c.KO
	default:
		return nil
	}
}

// IsEmpty is true when neither language is populated
func (c *MultiLanguageContent) IsEmpty() bool {
	return c == nil || (c.EN == nil && c.KO == nil)
}

// HeadingTexts returns the heading texts of the given language block
func (c *MultiLanguageContent) HeadingTexts(lang string) []string {
	block := c.Slot(lang)
	if block == nil {
		return nil
	}
	texts := make([]string, 0, len(block.Content.Headings))
	for _, h := range block.Content.Headings {
		texts = append(texts, h.Text)
	}
	return texts
}

// Value implements driver.Valuer so the content is stored in a JSON column
func (c MultiLanguageContent) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode multilanguage content: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON columns
func (c *MultiLanguageContent) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*c = MultiLanguageContent{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for multilanguage content")
	}
	return json.Unmarshal(data, c)
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// TimePtr returns a pointer to t
func TimePtr(t time.Time) *time.Time {
	return &t
}
