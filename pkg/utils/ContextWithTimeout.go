package utils

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

const DefaultRequestTimeout = 10 * time.Second

func ContextWithTimeout(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), timeout)
}
