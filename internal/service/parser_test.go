package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestParser_ParseCatalogPage(t *testing.T) {
	t.Parallel()

	entries, err := NewParser().ParseCatalogPage(readFixture(t, "catalog_page.html"))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, CatalogEntry{
		Title:        "Client Individuals: Total",
		DataID:       "PI4060",
		RelativePath: "/metric/5.3b/pi4060/",
	}, entries[0])
	assert.Equal(t, "Permanent Employees: Total", entries[1].Title)
	assert.Equal(t, "OI1479", entries[1].DataID)
}

func TestParser_ParseCatalogPageWithoutList(t *testing.T) {
	t.Parallel()

	entries, err := NewParser().ParseCatalogPage([]byte(`<html><body><p>maintenance</p></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParser_ParseDetailPage(t *testing.T) {
	t.Parallel()

	detail, err := NewParser().ParseDetailPage(readFixture(t, "detail_page.html"))
	require.NoError(t, err)

	assert.Equal(t, "Number", detail.ReportingFormat)
	assert.Equal(t, "Metric", detail.MetricType)
	assert.Equal(t, "Product/Service", detail.MetricLevel)
	assert.Equal(t, "IRIS+ System | Standards, PI4060", detail.IrisCitation)

	require.NotNil(t, detail.Definition)
	def := detail.Definition
	assert.Equal(t, "Client Individuals: Total (PI4060)", def.Title)
	assert.Equal(t, []string{"Number of individuals who were clients during the reporting period."}, def.Content.Paragraphs)
	require.Len(t, def.Content.Headings, 1)
	assert.Equal(t, "h3", def.Content.Headings[0].Tag)
	assert.Equal(t, "Calculation", def.Content.Headings[0].Text)
	require.Len(t, def.Content.Lists, 1)
	assert.Equal(t, "ul", def.Content.Lists[0].Type)
	assert.Equal(t, []string{"Count each individual once", "Include new and existing clients"}, def.Content.Lists[0].Items)
	assert.Empty(t, def.Content.OtherElements)
	assert.Equal(t,
		"Number of individuals who were clients during the reporting period. Calculation Count each individual once Include new and existing clients",
		def.Content.RawText)

	require.NotNil(t, detail.UsageGuidance)
	require.Len(t, detail.UsageGuidance.Content.OtherElements, 1)
	other := detail.UsageGuidance.Content.OtherElements[0]
	assert.Equal(t, "div", other.Tag)
	assert.Equal(t, "Footnote text", other.Text)
	assert.Equal(t, []string{"note", "highlight"}, other.Class)

	require.NotNil(t, detail.ImpactCategories)
	assert.Equal(t, "Impact Categories", detail.ImpactCategories.Title)
	require.Len(t, detail.ImpactCategories.Content.Headings, 2)
	assert.Equal(t, "Financial Services", detail.ImpactCategories.Content.Headings[0].Text)
	assert.Equal(t, "Health", detail.ImpactCategories.Content.Headings[1].Text)

	require.NotNil(t, detail.SdgGoals)
	require.Len(t, detail.SdgGoals.Content.Headings, 1)
	assert.Equal(t, "No Poverty", detail.SdgGoals.Content.Headings[0].Text)

	require.NotNil(t, detail.MetricHistory)
	require.Len(t, detail.MetricHistory.Content.Lists, 1)
	assert.Equal(t, "ol", detail.MetricHistory.Content.Lists[0].Type)

	require.NotNil(t, detail.RelatedMetrics)
	assert.Equal(t, []string{"Client Individuals: Female (PI8330)"}, detail.RelatedMetrics.Content.Paragraphs)

	require.Contains(t, detail.Other, "terms_and_definitions")
	assert.Equal(t, []string{"Client: an individual served."}, detail.Other["terms_and_definitions"].Content.Paragraphs)
}

func TestParser_ParseDetailPageWithoutContent(t *testing.T) {
	t.Parallel()

	_, err := NewParser().ParseDetailPage([]byte(`<html><body><h1>Not found</h1></body></html>`))
	assert.Error(t, err)
}

func TestClassifySection(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Client Individuals: Total (PI4060)": sectionDefinition,
		"Assets: Total (FP5931)":             sectionDefinition,
		"Account Value":                      sectionDefinition,
		"Usage Guidance":                     sectionUsageGuidance,
		"Impact Categories & Themes":         sectionImpactCategories,
		"SDG Goals":                          sectionSdgGoals,
		"Metric History":                     sectionMetricHistory,
		"Related metrics":                    sectionRelatedMetrics,
		"Terms & Definitions":                "terms_and_definitions",
		"Footnotes":                          "footnotes",
	}
	for title, want := range tests {
		assert.Equal(t, want, classifySection(title), title)
	}
}

func TestSeparatedText(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(
		strings.NewReader(`<div id="x"><b>Hello</b>world <script>ignored()</script><span>  again </span></div>`))
	require.NoError(t, err)

	assert.Equal(t, "Hello world again", separatedText(doc.Find("#x")))
}
