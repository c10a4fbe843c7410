package errors

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

var (
	// Domain kinds. Every rejection returned by a service unwraps to one of these.
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("scheduling conflict")
	ErrNotFound   = errors.New("record not found")
	ErrUniqueness = errors.New("duplicate value")
	ErrReferenced = errors.New("record is still referenced")

	// Auth
	ErrEmptyAuthHeader      = errors.New("authorization header is missing")
	ErrInvalidAuthHeader    = errors.New("authorization header must be 'Bearer <token>'")
	ErrInvalidSigningMethod = errors.New("unexpected token signing method")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token has expired")
	ErrTokenNotYetValid     = errors.New("token is not valid yet")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("access denied")
	ErrInvalidCredentials   = errors.New("no credential set for this user")

	ErrUserIDNotFoundInContext = errors.New("user id not found in request context")
	ErrBadRequest              = errors.New("bad request")
	ErrInternalServer          = errors.New("internal server error")
)

// DomainError carries a human-readable message next to its kind.
type DomainError struct {
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Kind }

func newDomainError(kind error, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewValidationError(format string, args ...interface{}) error {
	return newDomainError(ErrValidation, format, args...)
}

// NewFieldValidationError reports one message per offending field.
func NewFieldValidationError(fields map[string]string) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return &DomainError{
		Kind:    ErrValidation,
		Message: "invalid fields: " + strings.Join(names, ", "),
		Fields:  fields,
	}
}

func NewConflictError(format string, args ...interface{}) error {
	return newDomainError(ErrConflict, format, args...)
}

func NewNotFoundError(format string, args ...interface{}) error {
	return newDomainError(ErrNotFound, format, args...)
}

func NewUniquenessError(format string, args ...interface{}) error {
	return newDomainError(ErrUniqueness, format, args...)
}

func NewReferencedError(format string, args ...interface{}) error {
	return newDomainError(ErrReferenced, format, args...)
}

// Message returns the user-facing text of err, hiding infrastructure details.
func Message(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	var he *HttpError
	if errors.As(err, &he) {
		return he.Message
	}
	if KindOf(err) != nil {
		return err.Error()
	}
	return ErrInternalServer.Error()
}

// KindOf reports which known sentinel err wraps, or nil.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrValidation, ErrConflict, ErrNotFound, ErrUniqueness, ErrReferenced,
		ErrEmptyAuthHeader, ErrInvalidAuthHeader, ErrInvalidSigningMethod, ErrInvalidToken,
		ErrTokenExpired, ErrTokenNotYetValid, ErrUnauthorized, ErrForbidden, ErrInvalidCredentials,
		ErrUserIDNotFoundInContext, ErrBadRequest,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// StatusCode maps an error to the HTTP status it should be reported with.
func StatusCode(err error) int {
	var he *HttpError
	if errors.As(err, &he) {
		return he.Code
	}
	switch KindOf(err) {
	case ErrValidation, ErrBadRequest:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict, ErrUniqueness, ErrReferenced:
		return http.StatusConflict
	case ErrEmptyAuthHeader, ErrInvalidAuthHeader, ErrInvalidSigningMethod, ErrInvalidToken,
		ErrTokenExpired, ErrTokenNotYetValid, ErrUnauthorized, ErrInvalidCredentials,
		ErrUserIDNotFoundInContext:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
