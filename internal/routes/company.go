package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"reservation-system/internal/controllers"
	"reservation-system/internal/services"
	"reservation-system/pkg/filestorage"
)

func runCompanyRouter(secureGroup *echo.Group, adminOnly echo.MiddlewareFunc, reg *services.Registry, archive filestorage.FileStorageInterface, logger *zap.Logger) {
	ctrl := controllers.NewCompanyController(reg.Companies, archive, logger)

	secureGroup.GET("/companies", ctrl.GetCompanies)
	secureGroup.POST("/companies", ctrl.CreateCompany, adminOnly)
	secureGroup.POST("/companies/import", ctrl.ImportCompanies, adminOnly)
	secureGroup.PUT("/companies/:id", ctrl.UpdateCompany, adminOnly)
	secureGroup.DELETE("/companies/:id", ctrl.DeleteCompany, adminOnly)
}
