package controllers

import (
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"reservation-system/internal/services"
	"reservation-system/pkg/api"
	"reservation-system/pkg/types"
	"reservation-system/pkg/utils"
)

type CalendarController struct {
	calendarService services.CalendarServiceInterface
	clock           clockwork.Clock
	logger          *zap.Logger
}

func NewCalendarController(calendarService services.CalendarServiceInterface, clock clockwork.Clock, logger *zap.Logger) *CalendarController {
	return &CalendarController{calendarService: calendarService, clock: clock, logger: logger}
}

// GetCalendar defaults the anchor to today and the mode to month.
func (c *CalendarController) GetCalendar(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	anchor, err := utils.ParseDateParam("anchor", ctx.QueryParam("anchor"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	if anchor == nil {
		today := types.DateOf(c.clock.Now())
		anchor = &today
	}

	mode, err := services.ParseViewMode(ctx.QueryParam("mode"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.calendarService.GetCalendar(reqCtx, *anchor, mode, ctx.QueryParam("technician_id"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "calendar", res)
}
