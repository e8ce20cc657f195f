package model

import "strings"

// Normalize returns a well-formed copy of c: every sequence is non-nil, text
// is trimmed with inner whitespace collapsed, empty entries are dropped and
// raw_text is filled from the structured parts when it is empty. Order within
// each sequence is preserved. Normalize is idempotent.
func Normalize(c ContentData) ContentData {
	out := ContentData{
		Title: cleanText(c.Title),
		Content: ContentBody{
			Paragraphs:    make([]string, 0, len(c.Content.Paragraphs)),
			Lists:         make([]ListItem, 0, len(c.Content.Lists)),
			Headings:      make([]HeadingItem, 0, len(c.Content.Headings)),
			OtherElements: make([]OtherElement, 0, len(c.Content.OtherElements)),
		},
	}

	for _, p := range c.Content.Paragraphs {
		if p = cleanText(p); p != "" {
			out.Content.Paragraphs = append(out.Content.Paragraphs, p)
		}
	}

	for _, list := range c.Content.Lists {
		items := make([]string, 0, len(list.Items))
		for _, item := range list.Items {
			if item = cleanText(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		out.Content.Lists = append(out.Content.Lists, ListItem{
			Type:  normalizeListType(list.Type),
			Items: items,
		})
	}

	for _, h := range c.Content.Headings {
		text := cleanText(h.Text)
		if text == "" {
			continue
		}
		out.Content.Headings = append(out.Content.Headings, HeadingItem{
			Tag:  strings.ToLower(strings.TrimSpace(h.Tag)),
			Text: text,
		})
	}

	for _, el := range c.Content.OtherElements {
		text := cleanText(el.Text)
		if text == "" {
			continue
		}
		out.Content.OtherElements = append(out.Content.OtherElements, OtherElement{
			Tag:   strings.ToLower(strings.TrimSpace(el.Tag)),
			Text:  text,
			Class: uniqueLabels(el.Class),
		})
	}

	out.Content.RawText = cleanText(c.Content.RawText)
	if out.Content.RawText == "" {
		out.Content.RawText = flatten(out)
	}

	return out
}

// NormalizeMultiLanguage normalizes both language slots. An empty container
// normalizes to nil.
func NormalizeMultiLanguage(c *MultiLanguageContent) *MultiLanguageContent {
	if c.IsEmpty() {
		return nil
	}
	out := &MultiLanguageContent{}
	if c.EN != nil {
		en := Normalize(*c.EN)
		out.EN = &en
	}
	if c.KO != nil {
		ko := Normalize(*c.KO)
		out.KO = &ko
	}
	return out
}

// flatten builds the plain-text fallback from an already cleaned block
func flatten(c ContentData) string {
	var parts []string
	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	for _, h := range c.Content.Headings {
		parts = append(parts, h.Text)
	}
	parts = append(parts, c.Content.Paragraphs...)
	for _, list := range c.Content.Lists {
		parts = append(parts, list.Items...)
	}
	for _, el := range c.Content.OtherElements {
		parts = append(parts, el.Text)
	}
	return strings.Join(parts, " ")
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeListType(t string) string {
	if strings.EqualFold(strings.TrimSpace(t), ListOrdered) {
		return ListOrdered
	}
	return ListUnordered
}

func uniqueLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
