// Package validation holds the shared request validator and its custom tags.
package validation

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/klausurarchiv/archiv-server/internal/domain"
	apperrors "github.com/klausurarchiv/archiv-server/internal/errors"
	"github.com/klausurarchiv/archiv-server/internal/util"
)

// Validate is the shared validator instance. Custom tags:
//
//	securefilename — value survives filename sanitization unchanged
//	isodate        — value parses as an ISO calendar date (2006-01-02)
//	contenttype    — value is on the document content-type allowlist
var Validate = func() *validator.Validate {
	v := validator.New()

	// Use JSON tag names for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	//nolint:errcheck // registration only fails for empty tag names
	_ = v.RegisterValidation("securefilename", func(fl validator.FieldLevel) bool {
		return util.FilenameSecure(fl.Field().String())
	})
	//nolint:errcheck // registration only fails for empty tag names
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return domain.ValidDate(fl.Field().String())
	})
	//nolint:errcheck // registration only fails for empty tag names
	_ = v.RegisterValidation("contenttype", func(fl validator.FieldLevel) bool {
		return domain.ContentTypeAllowed(fl.Field().String())
	})

	return v
}()

// FormatError converts validator errors into client-facing domain errors.
func FormatError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			field := e.Field()
			switch e.Tag() {
			case "required":
				return apperrors.Validationf("%s is required", field)
			case "min":
				return apperrors.Validationf("%s must be at least %s characters", field, e.Param())
			case "max":
				return apperrors.Validationf("%s exceeds maximum length of %s characters", field, e.Param())
			case "securefilename":
				return apperrors.Validationf("%s is not a secure filename", field)
			case "isodate":
				return apperrors.Validationf("%s must be a date in YYYY-MM-DD form", field)
			case "contenttype":
				return apperrors.Validationf("%s is not an allowed content type", field)
			default:
				return apperrors.Validationf("%s is invalid", field)
			}
		}
	}
	return err
}
