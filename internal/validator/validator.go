package validator

import (
	ierr "github.com/flexprice/recurly-client/internal/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest validates req against its struct tags and marks any
// failure as ierr.ErrValidation with one detail entry per field.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
