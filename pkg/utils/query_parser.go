package utils

import (
	"strconv"
	"strings"

	apperrors "reservation-system/pkg/errors"
	"reservation-system/pkg/types"
)

// ParseDateParam reads an optional YYYY-MM-DD query value. A blank value
// yields nil.
func ParseDateParam(name, value string) (*types.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := types.ParseDate(value)
	if err != nil {
		return nil, apperrors.NewFieldValidationError(map[string]string{name: "must be a date in 2006-01-02 format"})
	}
	return &d, nil
}

// RequireDateParam is ParseDateParam for mandatory values.
func RequireDateParam(name, value string) (types.Date, error) {
	d, err := ParseDateParam(name, value)
	if err != nil {
		return types.Date{}, err
	}
	if d == nil {
		return types.Date{}, apperrors.NewFieldValidationError(map[string]string{name: "is required"})
	}
	return *d, nil
}

// ParseBoolParam falls back to def for blank or unparsable input.
func ParseBoolParam(value string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return b
}
