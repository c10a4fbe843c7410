package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"reservation-system/internal/dto"
	"reservation-system/internal/services"
	"reservation-system/pkg/api"
	"reservation-system/pkg/filestorage"
	"reservation-system/pkg/utils"
)

type EquipmentController struct {
	equipmentService   services.EquipmentServiceInterface
	reservationService services.ReservationServiceInterface
	archive            filestorage.FileStorageInterface
	logger             *zap.Logger
}

func NewEquipmentController(
	equipmentService services.EquipmentServiceInterface,
	reservationService services.ReservationServiceInterface,
	archive filestorage.FileStorageInterface,
	logger *zap.Logger,
) *EquipmentController {
	return &EquipmentController{
		equipmentService:   equipmentService,
		reservationService: reservationService,
		archive:            archive,
		logger:             logger,
	}
}

func (c *EquipmentController) GetEquipments(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	res, err := c.equipmentService.GetEquipments(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "equipment list", res)
}

func (c *EquipmentController) FindEquipment(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	res, err := c.equipmentService.FindEquipment(reqCtx, ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "equipment found", res)
}

func (c *EquipmentController) CreateEquipment(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	var payload dto.CreateEquipmentDTO
	if err := bindBody(ctx, &payload); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.CreateEquipment(reqCtx, payload)
	if err != nil {
		c.logger.Warn("CreateEquipment: rejected", zap.String("gageId", payload.GageID), zap.Error(err))
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "equipment created", res)
}

func (c *EquipmentController) UpdateEquipment(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	var payload dto.UpdateEquipmentDTO
	if err := bindBody(ctx, &payload); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.UpdateEquipment(reqCtx, ctx.Param("id"), payload)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "equipment updated", res)
}

func (c *EquipmentController) DeleteEquipment(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	removed, err := c.equipmentService.DeleteEquipment(reqCtx, ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "equipment deleted", map[string]int64{"deletedReservations": removed})
}

// GetEquipmentReservations lists the bookings of one piece of equipment.
// Finished bookings are left out unless ?all=true.
func (c *EquipmentController) GetEquipmentReservations(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	all := utils.ParseBoolParam(ctx.QueryParam("all"), false)
	res, err := c.reservationService.ListReservationsForEquipment(reqCtx, ctx.Param("id"), !all)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "equipment reservations", res)
}

func (c *EquipmentController) ImportEquipment(ctx echo.Context) error {
	upload, err := openImportUpload(ctx, c.archive, "imports/equipment", c.logger)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	defer upload.Close()

	rows, err := services.ParseEquipmentFile(upload.file, upload.format)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.BulkUpsertEquipment(ctx.Request().Context(), rows)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("ImportEquipment: done",
		zap.String("file", upload.name),
		zap.Int("created", res.CreatedCount),
		zap.Int("updated", res.UpdatedCount),
		zap.Int("errors", len(res.Errors)),
	)
	return api.SuccessOne(ctx, http.StatusOK, "import finished", res)
}
