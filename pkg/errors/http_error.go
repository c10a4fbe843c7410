package errors

import (
	"errors"
	"fmt"
)

// HttpError is what controllers hand to api.ErrorResponse.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

// FromError builds an HttpError from a service error. Domain errors keep
// their own message and field details; anything else gets fallback.
func FromError(err error, fallback string) *HttpError {
	var he *HttpError
	if errors.As(err, &he) {
		return he
	}
	code := StatusCode(err)
	msg := fallback
	var details interface{}
	if KindOf(err) != nil {
		msg = Message(err)
	}
	var de *DomainError
	if errors.As(err, &de) && len(de.Fields) > 0 {
		details = de.Fields
	}
	return NewHttpError(code, msg, err, details)
}
