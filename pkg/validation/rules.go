package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("role", isRole); err != nil {
		return err
	}
	if err := v.RegisterValidation("hexcolor_or_empty", isHexColorOrEmpty); err != nil {
		return err
	}
	return nil
}

func isRole(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "ADMIN" || s == "TECHNICIAN"
}

func isHexColorOrEmpty(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || hexColorRe.MatchString(s)
}
