package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jjenkins/irisplus/internal/model"
)

// CatalogEntry is one metric link on a catalog list page
type CatalogEntry struct {
	Title        string
	DataID       string
	RelativePath string
}

// MetricDetail holds everything extracted from a metric detail page
type MetricDetail struct {
	ReportingFormat string
	MetricType      string
	MetricLevel     string
	IrisCitation    string

	Definition       *model.ContentData
	UsageGuidance    *model.ContentData
	ImpactCategories *model.ContentData
	SdgGoals         *model.ContentData
	MetricHistory    *model.ContentData
	RelatedMetrics   *model.ContentData

	// Other holds boxes whose header matched no known section, keyed by slug
	Other map[string]model.ContentData
}

// Metadata labels of the detail page sidebar
const (
	labelReportingFormat = "Reporting Format"
	labelMetricType      = "Metric Type"
	labelMetricLevel     = "Metric Level"
	labelCitation        = "IRIS Metric Citation"
)

// Section keys a metric box is classified into
const (
	sectionDefinition       = "definition"
	sectionUsageGuidance    = "usage_guidance"
	sectionImpactCategories = "impact_categories"
	sectionSdgGoals         = "sdg_goals"
	sectionMetricHistory    = "metric_history"
	sectionRelatedMetrics   = "related_metrics"
)

var definitionMarkers = []string{"(PI", "(FP", "(OI", "(PD", "(OD"}

// Parser extracts catalog entries and metric content from IRIS+ HTML pages
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseCatalogPage extracts the metric links of a catalog list page. Links
// without a data id are skipped.
func (p *Parser) ParseCatalogPage(body []byte) ([]CatalogEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog page: %w", err)
	}

	list := doc.Find(".catalog-list").First()
	if list.Length() == 0 {
		log.Warn("catalog-list element not found")
		return nil, nil
	}

	var entries []CatalogEntry
	list.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		dataID, _ := link.Find("span.id").First().Attr("data-id")
		dataID = strings.TrimSpace(dataID)
		if dataID == "" {
			log.Debug("skipping catalog link without data id", "href", link.AttrOr("href", ""))
			return
		}

		title := separatedText(link)
		if open := strings.Index(title, "("); open >= 0 && strings.Contains(title, ")") {
			title = strings.TrimSpace(title[:open])
		}

		entries = append(entries, CatalogEntry{
			Title:        title,
			DataID:       dataID,
			RelativePath: link.AttrOr("href", ""),
		})
	})

	return entries, nil
}

// ParseDetailPage extracts the sidebar metadata and every metric box of a
// detail page. Content blocks are returned normalized.
func (p *Parser) ParseDetailPage(body []byte) (*MetricDetail, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail page: %w", err)
	}

	content := doc.Find(".content-area").First()
	if content.Length() == 0 {
		return nil, fmt.Errorf("content-area element not found")
	}

	detail := &MetricDetail{Other: make(map[string]model.ContentData)}
	p.parseMetadata(doc, detail)

	content.Find("div.metric-box").Each(func(_ int, box *goquery.Selection) {
		header := box.Find("header, h1, h2, h3, h4, h5, h6").First()
		if header.Length() == 0 {
			return
		}
		title := separatedText(header)

		section := box.Find("section").First()
		if section.Length() == 0 {
			section = box
		}

		block := model.Normalize(model.ContentData{
			Title:   title,
			Content: extractSection(section),
		})

		switch key := classifySection(title); key {
		case sectionDefinition:
			detail.Definition = &block
		case sectionUsageGuidance:
			detail.UsageGuidance = &block
		case sectionImpactCategories:
			detail.ImpactCategories = &block
		case sectionSdgGoals:
			detail.SdgGoals = &block
		case sectionMetricHistory:
			detail.MetricHistory = &block
		case sectionRelatedMetrics:
			detail.RelatedMetrics = &block
		default:
			detail.Other[key] = block
		}
	})

	return detail, nil
}

func (p *Parser) parseMetadata(doc *goquery.Document, detail *MetricDetail) {
	doc.Find("section#metadata ul").First().Find("li").Each(func(_ int, li *goquery.Selection) {
		text := separatedText(li)
		switch {
		case strings.Contains(text, labelReportingFormat):
			detail.ReportingFormat = stripLabel(text, labelReportingFormat)
		case strings.Contains(text, labelMetricType):
			detail.MetricType = stripLabel(text, labelMetricType)
		case strings.Contains(text, labelMetricLevel):
			detail.MetricLevel = stripLabel(text, labelMetricLevel)
		case strings.Contains(text, labelCitation):
			detail.IrisCitation = stripLabel(text, labelCitation)
		}
	})
}

func stripLabel(text, label string) string {
	return strings.TrimSpace(strings.Replace(text, label, "", 1))
}

// classifySection maps a metric box header to its section key
func classifySection(title string) string {
	if strings.Contains(title, "Account Value") {
		return sectionDefinition
	}
	for _, marker := range definitionMarkers {
		if strings.Contains(title, marker) {
			return sectionDefinition
		}
	}

	switch {
	case strings.Contains(title, "Usage Guidance"):
		return sectionUsageGuidance
	case strings.Contains(title, "Impact Categories"):
		return sectionImpactCategories
	case strings.Contains(title, "SDG Goals"):
		return sectionSdgGoals
	case strings.Contains(title, "Metric History"):
		return sectionMetricHistory
	case strings.Contains(title, "Related metrics"):
		return sectionRelatedMetrics
	}

	key := strings.ToLower(title)
	key = strings.ReplaceAll(key, " ", "_")
	return strings.ReplaceAll(key, "&", "and")
}

// extractSection collects the structured content of a section element
func extractSection(section *goquery.Selection) model.ContentBody {
	var body model.ContentBody
	captured := make(map[string]struct{})

	section.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		if text := separatedText(h); text != "" {
			body.Headings = append(body.Headings, model.HeadingItem{Tag: goquery.NodeName(h), Text: text})
			captured[text] = struct{}{}
		}
	})

	section.Find("p").Each(func(_ int, para *goquery.Selection) {
		if text := separatedText(para); text != "" {
			body.Paragraphs = append(body.Paragraphs, text)
			captured[text] = struct{}{}
		}
	})

	section.Find("ul, ol").Each(func(_ int, list *goquery.Selection) {
		var items []string
		list.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := separatedText(li); text != "" {
				items = append(items, text)
				captured[text] = struct{}{}
			}
		})
		if len(items) > 0 {
			body.Lists = append(body.Lists, model.ListItem{Type: goquery.NodeName(list), Items: items})
		}
	})

	section.Find("div, span").Each(func(_ int, el *goquery.Selection) {
		if el.Children().Length() > 0 {
			return
		}
		text := separatedText(el)
		if text == "" {
			return
		}
		if _, ok := captured[text]; ok {
			return
		}
		captured[text] = struct{}{}
		body.OtherElements = append(body.OtherElements, model.OtherElement{
			Tag:   goquery.NodeName(el),
			Text:  text,
			Class: strings.Fields(el.AttrOr("class", "")),
		})
	})

	body.RawText = separatedText(section)
	return body
}

// separatedText joins the trimmed text nodes below sel with single spaces
func separatedText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, node *goquery.Selection) {
			switch goquery.NodeName(node) {
			case "#text":
				if text := strings.Join(strings.Fields(node.Text()), " "); text != "" {
					parts = append(parts, text)
				}
			case "script", "style", "#comment":
			default:
				walk(node)
			}
		})
	}
	walk(sel)
	return strings.Join(parts, " ")
}
