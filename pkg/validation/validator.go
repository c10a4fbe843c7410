package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "reservation-system/pkg/errors"
)

// CustomValidator plugs validator/v10 into echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator. Failures come back as domain
// validation errors with one message per field.
func (cv *CustomValidator) Validate(i interface{}) error {
	return ToDomainError(cv.validator.Struct(i))
}

func New() *CustomValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	registerNullTypes(v)

	if err := registerRules(v); err != nil {
		panic("validation: register rules: " + err.Error())
	}

	return &CustomValidator{validator: v}
}

// ToDomainError converts validator output into apperrors.ErrValidation.
func ToDomainError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError("%s", err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return apperrors.NewFieldValidationError(fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", fe.Param())
	case "oneof":
		return "must be one of " + fe.Param()
	case "role":
		return "must be ADMIN or TECHNICIAN"
	case "hexcolor_or_empty":
		return "must be a #rrggbb colour"
	case "min":
		return "must be at least " + fe.Param() + " long"
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
