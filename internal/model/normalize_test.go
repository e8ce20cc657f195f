package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messyBlock() ContentData {
	return ContentData{
		Title: "  Usage   Guidance \n",
		Content: ContentBody{
			Paragraphs: []string{"  Report the   number\tof clients. ", "", "   "},
			Lists: []ListItem{
				{Type: "OL", Items: []string{" first ", "", "second"}},
				{Type: "menu", Items: []string{"only"}},
				{Type: "ul", Items: []string{"  "}},
			},
			Headings: []HeadingItem{
				{Tag: "H3", Text: " Agriculture "},
				{Tag: "h4", Text: ""},
			},
			OtherElements: []OtherElement{
				{Tag: "SPAN", Text: " note ", Class: []string{"tag", " tag", "", "badge", "tag"}},
				{Tag: "div", Text: "  "},
			},
		},
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got := Normalize(messyBlock())

	assert.Equal(t, "Usage Guidance", got.Title)
	assert.Equal(t, []string{"Report the number of clients."}, got.Content.Paragraphs)
	assert.Equal(t, []ListItem{
		{Type: ListOrdered, Items: []string{"first", "second"}},
		{Type: ListUnordered, Items: []string{"only"}},
	}, got.Content.Lists)
	assert.Equal(t, []HeadingItem{{Tag: "h3", Text: "Agriculture"}}, got.Content.Headings)
	assert.Equal(t, []OtherElement{{Tag: "span", Text: "note", Class: []string{"tag", "badge"}}}, got.Content.OtherElements)
	assert.Equal(t, "Usage Guidance Agriculture Report the number of clients. first second only note", got.Content.RawText)
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []ContentData{
		messyBlock(),
		{},
		{Title: "x", Content: ContentBody{RawText: "  kept   as raw  "}},
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestNormalize_EmptyBlockHasNonNilSequences(t *testing.T) {
	t.Parallel()

	got := Normalize(ContentData{})
	require.NotNil(t, got.Content.Paragraphs)
	require.NotNil(t, got.Content.Lists)
	require.NotNil(t, got.Content.Headings)
	require.NotNil(t, got.Content.OtherElements)
	assert.Empty(t, got.Content.RawText)
}

func TestNormalize_KeepsExistingRawText(t *testing.T) {
	t.Parallel()

	got := Normalize(ContentData{
		Title:   "Title",
		Content: ContentBody{Paragraphs: []string{"p"}, RawText: " Original\n text "},
	})
	assert.Equal(t, "Original text", got.Content.RawText)
}

func TestNormalize_OutputValidates(t *testing.T) {
	t.Parallel()

	got := Normalize(messyBlock())
	require.NoError(t, got.Validate())
}

func TestNormalizeMultiLanguage(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NormalizeMultiLanguage(nil))
	assert.Nil(t, NormalizeMultiLanguage(&MultiLanguageContent{}))

	in := messyBlock()
	got := NormalizeMultiLanguage(&MultiLanguageContent{KO: &in})
	require.NotNil(t, got)
	assert.Nil(t, got.EN)
	require.NotNil(t, got.KO)
	assert.Equal(t, "Usage Guidance", got.KO.Title)
	// input is not modified
	assert.Equal(t, "  Usage   Guidance \n", in.Title)
}
