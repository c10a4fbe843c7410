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

type CompanyController struct {
	companyService services.CompanyServiceInterface
	archive        filestorage.FileStorageInterface
	logger         *zap.Logger
}

func NewCompanyController(companyService services.CompanyServiceInterface, archive filestorage.FileStorageInterface, logger *zap.Logger) *CompanyController {
	return &CompanyController{companyService: companyService, archive: archive, logger: logger}
}

func (c *CompanyController) GetCompanies(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	res, err := c.companyService.GetCompanies(reqCtx)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "company list", res)
}

func (c *CompanyController) CreateCompany(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	var payload dto.CreateCompanyDTO
	if err := bindBody(ctx, &payload); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.companyService.CreateCompany(reqCtx, payload)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "company created", res)
}

func (c *CompanyController) UpdateCompany(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	var payload dto.UpdateCompanyDTO
	if err := bindBody(ctx, &payload); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.companyService.UpdateCompany(reqCtx, ctx.Param("id"), payload)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "company updated", res)
}

func (c *CompanyController) DeleteCompany(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, utils.DefaultRequestTimeout)
	defer cancel()

	if err := c.companyService.DeleteCompany(reqCtx, ctx.Param("id")); err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "company deleted", nil)
}

func (c *CompanyController) ImportCompanies(ctx echo.Context) error {
	upload, err := openImportUpload(ctx, c.archive, "imports/companies", c.logger)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	defer upload.Close()

	rows, err := services.ParseCompanyFile(upload.file, upload.format)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.companyService.BulkUpsertCompanies(ctx.Request().Context(), rows)
	if err != nil {
		return api.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "import finished", res)
}
