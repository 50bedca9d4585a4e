package api

import (
	"errors"
	"fmt"
	"sync"

	app_errors "prism-ai/backend/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Centralized request validation. The validator instance is a singleton:
// building it is expensive and it is safe for concurrent use.

var (
	validate *validator.Validate
	once     sync.Once
)

func getInstance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
	})
	return validate
}

// validationError carries the per-field issue list alongside the sentinel so
// the response layer can render structured detail.
type validationError struct {
	Issues []FieldIssue
}

func (e *validationError) Error() string {
	return fmt.Sprintf("%v: %d field(s) failed validation", app_errors.ErrValidation, len(e.Issues))
}

func (e *validationError) Unwrap() error { return app_errors.ErrValidation }

// validateRequest checks a payload struct against its `validate:` tags and
// returns a *validationError listing every failing field.
func validateRequest(payload interface{}) error {
	v := getInstance()
	err := v.Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: an unexpected error occurred during validation: %s", app_errors.ErrValidation, err.Error())
	}

	issues := make([]FieldIssue, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		issues = append(issues, FieldIssue{
			Field: fieldErr.Field(),
			Issue: fmt.Sprintf("failed on the '%s' rule", fieldErr.Tag()),
		})
	}
	return &validationError{Issues: issues}
}
