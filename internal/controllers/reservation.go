package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"reservation-system/internal/dto"
	"reservation-system/internal/services"
	"reservation-system/pkg/api"
	"reservation-system/pkg/utils"
)

type ReservationController struct {
	reservationService services.ReservationServiceInterface
	logger             *zap.Logger
}

func NewReservationController(reservationService services.ReservationServiceInterface, logger *zap.Logger) *ReservationController {
	return &ReservationController{reservationService: reservationService, logger: logger}
}

func (c *ReservationController) GetReservations(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	from, err := utils.ParseDateParam("from", ctx.QueryParam("from"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	to, err := utils.ParseDateParam("to", ctx.QueryParam("to"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reservationService.ListReservations(reqCtx, from, to)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "reservation list", res)
}

func (c *ReservationController) FindReservation(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	res, err := c.reservationService.FindReservation(reqCtx, ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "reservation found", res)
}

// GetTechnicianReservations splits a technician's bookings into upcoming
// and past.
func (c *ReservationController) GetTechnicianReservations(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	res, err := c.reservationService.ClassifyReservationsForTechnician(reqCtx, ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "technician reservations", res)
}

func (c *ReservationController) CreateReservation(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	var payload dto.CreateReservationDTO
	if err := bindBody(ctx, &payload); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reservationService.CreateReservation(reqCtx, payload)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "reservation created", res)
}

func (c *ReservationController) CreateBatchReservations(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	var payload dto.CreateBatchReservationDTO
	if err := bindBody(ctx, &payload); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reservationService.CreateBatchReservations(reqCtx, payload)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	total := len(res)
	return ctx.JSON(http.StatusCreated, api.Response[any]{
		Status:  true,
		Message: "reservations created",
		Body:    res,
		Total:   &total,
	})
}

func (c *ReservationController) UpdateReservation(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	var payload dto.UpdateReservationDTO
	if err := bindBody(ctx, &payload); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reservationService.UpdateReservation(reqCtx, ctx.Param("id"), payload)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "reservation updated", res)
}

func (c *ReservationController) DeleteReservation(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	if err := c.reservationService.DeleteReservation(reqCtx, ctx.Param("id")); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "reservation deleted", nil)
}

func (c *ReservationController) CheckAvailability(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	pickup, err := utils.RequireDateParam("pickup", ctx.QueryParam("pickup"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	ret, err := utils.RequireDateParam("return", ctx.QueryParam("return"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reservationService.CheckAvailability(reqCtx, ctx.QueryParam("equipment_id"), pickup, ret, ctx.QueryParam("exclude_id"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "availability checked", res)
}
