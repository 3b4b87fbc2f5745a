// Package validator wraps go-playground/validator behind a single Validate
// call with standardized error formatting, for declarative struct
// validation via `validate:"..."` tags.
package validator

import (
	"errors"
	"fmt"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is the root of the error chain returned when one or
// more fields fail validation, so callers can detect validation failures
// with errors.Is.
var ErrValidationFailed = errors.New("struct validation failed")

// validate is the singleton validator instance, initialized on package load.
var validate *gvalidator.Validate

func init() {
	validate = gvalidator.New(gvalidator.WithRequiredStructEnabled())
}

// formatError converts raw validator errors into a joined error chain
// rooted at ErrValidationFailed, one formatted message per failed field.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, fieldErr := range validationErrors {
		errs = append(errs, fmt.Errorf("'%s': value '%v' does not satisfy the '%s' constraint",
			fieldErr.Field(),
			fieldErr.Value(),
			fieldErr.Tag(),
		))
	}

	return errors.Join(errs...)
}

// Validate checks the struct against its validation tags. It returns nil
// when every field passes, or a joined error including ErrValidationFailed
// otherwise.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}
