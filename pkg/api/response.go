package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "reservation-system/pkg/errors"
)

type Response[T any] struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Body    T           `json:"body,omitempty"`
	Total   *int        `json:"total,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

func SuccessList[T any](c echo.Context, message string, list []T) error {
	if list == nil {
		list = make([]T, 0)
	}
	total := len(list)
	return c.JSON(http.StatusOK, Response[[]T]{
		Status:  true,
		Message: message,
		Body:    list,
		Total:   &total,
	})
}

// ErrorResponse reports err with the status its kind maps to. Domain
// rejections keep their own message; anything else is logged and hidden
// behind a generic one.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	httpErr := apperrors.FromError(err, apperrors.ErrInternalServer.Error())

	if httpErr.Code >= http.StatusInternalServerError {
		logger.Error("ErrorResponse: request failed",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
	}

	return c.JSON(httpErr.Code, Response[any]{
		Status:  false,
		Message: httpErr.Message,
		Details: httpErr.Details,
	})
}
