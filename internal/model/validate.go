package model

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var notBlank = validation.By(func(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
})

// Validate checks a record as it enters the system (before it has an id)
func (m *IrisMetric) Validate() error {
	return m.validate(false)
}

// ValidatePersisted checks a stored record. It additionally requires the
// storage-assigned fields, and tolerates a translation older than the latest
// scrape since a re-scrape does not discard the existing translation.
func (m *IrisMetric) ValidatePersisted() error {
	return m.validate(true)
}

func (m *IrisMetric) validate(persisted bool) error {
	errs := validation.Errors{}

	err := validation.ValidateStruct(m,
		validation.Field(&m.TitleEN, notBlank),
		validation.Field(&m.DataID, notBlank),
		validation.Field(&m.ID, validation.When(persisted, validation.Required)),
		validation.Field(&m.CreatedAt, validation.When(persisted, validation.Required)),
		validation.Field(&m.UpdatedAt, validation.When(persisted, validation.Required)),
	)
	if err != nil {
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for name, fieldErr := range fieldErrs {
			errs[name] = fieldErr
		}
	}

	if persisted && !m.CreatedAt.IsZero() && m.UpdatedAt.Before(m.CreatedAt) {
		errs["updated_at"] = validation.NewError("validation_updated_before_created", "must not be earlier than created_at")
	}

	if m.TranslatedAt != nil {
		switch {
		case m.ScrapedAt == nil:
			errs["translated_at"] = validation.NewError("validation_translated_without_scrape", "requires scraped_at")
		case !persisted && m.TranslatedAt.Before(*m.ScrapedAt):
			errs["translated_at"] = validation.NewError("validation_translated_before_scrape", "must not be earlier than scraped_at")
		}
	}

	if _, ok := errs["translated_at"]; !ok {
		hasKorean := m.HasKorean()
		if m.TranslatedAt != nil && !hasKorean {
			errs["translated_at"] = validation.NewError("validation_translated_without_content", "is set but no Korean content is present")
		} else if m.TranslatedAt == nil && hasKorean {
			errs["translated_at"] = validation.NewError("validation_content_without_translated", "is required when Korean content is present")
		}
	}

	for name, content := range m.ContentFields() {
		if content == nil {
			continue
		}
		if fieldErr := content.Validate(); fieldErr != nil {
			errs[name] = fieldErr
		}
	}

	return newValidationError(errs)
}

// Validate checks the structural integrity of a present multilingual field
func (c *MultiLanguageContent) Validate() error {
	if c.IsEmpty() {
		return validation.NewError("validation_content_empty", "at least one of en or ko must be populated")
	}
	errs := validation.Errors{}
	if c.EN != nil {
		errs[LangEN] = c.EN.Validate()
	}
	if c.KO != nil {
		errs[LangKO] = c.KO.Validate()
	}
	return errs.Filter()
}

// Validate checks the list tags of a content block
func (c *ContentData) Validate() error {
	for i, list := range c.Content.Lists {
		if list.Type != ListUnordered && list.Type != ListOrdered {
			return validation.NewError("validation_list_type", fmt.Sprintf("list %d has type %q, want ul or ol", i, list.Type))
		}
	}
	return nil
}
