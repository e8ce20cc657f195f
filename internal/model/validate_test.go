package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t1 = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	t2 = time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)
	t3 = time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC)
)

func block(title string, paragraphs ...string) *ContentData {
	return &ContentData{Title: title, Content: ContentBody{Paragraphs: paragraphs}}
}

func scrapedMetric() IrisMetric {
	return IrisMetric{
		TitleEN:    "Client Individuals: Total",
		DataID:     "PI4060",
		ScrapedAt:  TimePtr(t1),
		Success:    true,
		Version:    DefaultVersion,
		Definition: &MultiLanguageContent{EN: block("Definition", "Number of individuals")},
	}
}

func TestIrisMetric_ValidateAcceptsScrapedRecord(t *testing.T) {
	t.Parallel()

	m := scrapedMetric()
	require.NoError(t, m.Validate())
	assert.Equal(t, StateScraped, m.State())
}

func TestIrisMetric_ValidateEmptyTitle(t *testing.T) {
	t.Parallel()

	m := IrisMetric{TitleEN: "", DataID: "X"}
	err := m.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrValidation))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("title_en"))
	assert.False(t, verr.Has("data_id"))
}

func TestIrisMetric_ValidateReportsEveryField(t *testing.T) {
	t.Parallel()

	m := IrisMetric{
		TitleEN:      "  ",
		TranslatedAt: TimePtr(t2),
		SdgGoals:     &MultiLanguageContent{},
	}
	err := m.Validate()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"data_id", "sdg_goals", "title_en", "translated_at"}, verr.Fields())
}

func TestIrisMetric_ValidateLifecycleOrdering(t *testing.T) {
	t.Parallel()

	m := scrapedMetric()
	m.ScrapedAt = TimePtr(t2)
	m.TranslatedAt = TimePtr(t1)
	m.TitleKO = StringPtr("고객 개인: 합계")

	var verr *ValidationError
	require.True(t, errors.As(m.Validate(), &verr))
	assert.Equal(t, []string{"translated_at"}, verr.Fields())

	m.TranslatedAt = TimePtr(t3)
	require.NoError(t, m.Validate())
	assert.Equal(t, StateTranslated, m.State())
	assert.False(t, m.TranslationStale())
}

func TestIrisMetric_ValidateTranslationGroup(t *testing.T) {
	t.Parallel()

	t.Run("korean content without translated_at", func(t *testing.T) {
		t.Parallel()

		m := scrapedMetric()
		m.Definition.KO = block("정의", "개인 수")
		var verr *ValidationError
		require.True(t, errors.As(m.Validate(), &verr))
		assert.True(t, verr.Has("translated_at"))
	})

	t.Run("translated_at without korean content", func(t *testing.T) {
		t.Parallel()

		m := scrapedMetric()
		m.TranslatedAt = TimePtr(t2)
		var verr *ValidationError
		require.True(t, errors.As(m.Validate(), &verr))
		assert.True(t, verr.Has("translated_at"))
	})

	t.Run("korean without english is allowed", func(t *testing.T) {
		t.Parallel()

		m := scrapedMetric()
		m.UsageGuidance = &MultiLanguageContent{KO: block("사용 지침")}
		m.TranslatedAt = TimePtr(t2)
		require.NoError(t, m.Validate())
	})
}

func TestIrisMetric_ValidateListType(t *testing.T) {
	t.Parallel()

	m := scrapedMetric()
	m.Definition.EN.Content.Lists = []ListItem{{Type: "dl", Items: []string{"a"}}}

	var verr *ValidationError
	require.True(t, errors.As(m.Validate(), &verr))
	assert.Equal(t, []string{"definition"}, verr.Fields())
}

func TestIrisMetric_ValidatePersisted(t *testing.T) {
	t.Parallel()

	m := scrapedMetric()
	var verr *ValidationError
	require.True(t, errors.As(m.ValidatePersisted(), &verr))
	assert.Equal(t, []string{"created_at", "id", "updated_at"}, verr.Fields())

	m.ID = 7
	m.CreatedAt = t1
	m.UpdatedAt = t1
	require.NoError(t, m.ValidatePersisted())

	// a re-scrape after translation is a valid stored state
	m.ScrapedAt = TimePtr(t3)
	m.TitleKO = StringPtr("고객 개인: 합계")
	m.TranslatedAt = TimePtr(t2)
	require.NoError(t, m.ValidatePersisted())
	assert.True(t, m.TranslationStale())
	require.Error(t, m.Validate())

	m.UpdatedAt = t1.Add(-time.Hour)
	require.True(t, errors.As(m.ValidatePersisted(), &verr))
	assert.Equal(t, []string{"updated_at"}, verr.Fields())
}

func TestIrisMetric_State(t *testing.T) {
	t.Parallel()

	m := IrisMetric{TitleEN: "X", DataID: "X", ScrapedAt: TimePtr(t1)}
	assert.Equal(t, StateScrapedFailed, m.State())
	m.Success = true
	assert.Equal(t, StateScraped, m.State())
	m.TranslatedAt = TimePtr(t2)
	assert.Equal(t, StateTranslated, m.State())
}

func TestMultiLanguageContent_ScanValue(t *testing.T) {
	t.Parallel()

	in := MultiLanguageContent{EN: &ContentData{
		Title: "Definition",
		Content: ContentBody{
			Paragraphs:    []string{"first", "second"},
			Lists:         []ListItem{{Type: ListOrdered, Items: []string{"one", "two"}}},
			Headings:      []HeadingItem{{Tag: "h3", Text: "Agriculture"}},
			OtherElements: []OtherElement{},
			RawText:       "Definition first second",
		},
	}}
	v, err := in.Value()
	require.NoError(t, err)

	s, ok := v.(string)
	require.True(t, ok)

	var out MultiLanguageContent
	require.NoError(t, out.Scan([]byte(s)))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	assert.True(t, out.IsEmpty())
	require.Error(t, out.Scan(42))
}
