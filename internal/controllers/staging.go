package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"reservation-system/internal/dto"
	"reservation-system/internal/services"
	"reservation-system/pkg/api"
	"reservation-system/pkg/utils"
)

type StagingController struct {
	stagingService services.StagingServiceInterface
	logger         *zap.Logger
}

func NewStagingController(stagingService services.StagingServiceInterface, logger *zap.Logger) *StagingController {
	return &StagingController{stagingService: stagingService, logger: logger}
}

func (c *StagingController) loadList(ctx echo.Context) (*dto.StagingListDTO, error) {
	date, err := utils.RequireDateParam("date", ctx.QueryParam("date"))
	if err != nil {
		return nil, err
	}
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()
	return c.stagingService.GetStagingList(reqCtx, date, ctx.QueryParam("technician_id"))
}

func (c *StagingController) GetStagingList(ctx echo.Context) error {
	list, err := c.loadList(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "staging list", list)
}

// ExportStagingList streams the same list as an XLSX checklist.
func (c *StagingController) ExportStagingList(ctx echo.Context) error {
	list, err := c.loadList(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	f, err := c.stagingService.BuildStagingWorkbook(list)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	defer f.Close()

	fileName := fmt.Sprintf("staging_%s.xlsx", list.Date)
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

func (c *StagingController) SetStaged(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	var payload dto.SetStagedDTO
	if err := bindBody(ctx, &payload); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	id := ctx.Param("id")
	if err := c.stagingService.SetStaged(reqCtx, id, *payload.Staged); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "staging flag updated", map[string]interface{}{
		"reservationId": id,
		"staged":        *payload.Staged,
	})
}
