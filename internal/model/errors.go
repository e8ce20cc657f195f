package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Sentinels for errors.Is matching against the typed errors below
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// ValidationError lists every field that failed validation
type ValidationError struct {
	Errors validation.Errors
}

func newValidationError(errs validation.Errors) error {
	filtered := errs.Filter()
	if filtered == nil {
		return nil
	}
	return &ValidationError{Errors: filtered.(validation.Errors)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Errors.Error())
}

// Is matches ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the violated field names in sorted order
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

// Has reports whether the named field was violated
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Errors[field]
	return ok
}

// NotFoundError is returned when a lookup by id or data_id yields no row
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return ErrNotFound.Error()
	}
	return fmt.Sprintf("metric %s not found", e.Key)
}

// Is matches ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError rejects an incoming write that would move a record backwards
type ConflictError struct {
	DataID  string
	Reasons []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on metric %s: %s", e.DataID, strings.Join(e.Reasons, "; "))
}

// Is matches ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
