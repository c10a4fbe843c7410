package services

import (
	"errors"

	apperrors "reservation-system/pkg/errors"
	"reservation-system/pkg/types"
	"reservation-system/pkg/validation"
)

// Services validate their own input so the CLI and seeders get the same
// checks as HTTP callers.
var validate = validation.New()

// parseWindow parses a pickup/return pair and enforces returnDate >= pickupDate.
func parseWindow(pickupRaw, returnRaw string) (types.Date, types.Date, error) {
	fields := make(map[string]string)
	pickup, err := types.ParseDate(pickupRaw)
	if err != nil {
		fields["pickupDate"] = "must be a date in 2006-01-02 format"
	}
	ret, err := types.ParseDate(returnRaw)
	if err != nil {
		fields["returnDate"] = "must be a date in 2006-01-02 format"
	}
	if len(fields) > 0 {
		return types.Date{}, types.Date{}, apperrors.NewFieldValidationError(fields)
	}
	if ret.Before(pickup) {
		return types.Date{}, types.Date{}, apperrors.NewFieldValidationError(map[string]string{
			"returnDate": "must be on or after pickupDate",
		})
	}
	return pickup, ret, nil
}

// notFound rewrites a bare store miss into a message naming the record.
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFoundError(format, args...)
	}
	return err
}
