package routes

import (
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"reservation-system/internal/controllers"
	"reservation-system/internal/services"
)

func runStagingRouter(secureGroup *echo.Group, reg *services.Registry, logger *zap.Logger) {
	ctrl := controllers.NewStagingController(reg.Staging, logger)

	secureGroup.GET("/staging", ctrl.GetStagingList)
	secureGroup.GET("/staging/export", ctrl.ExportStagingList)
	secureGroup.PUT("/staging/:id", ctrl.SetStaged)
}

func runCalendarRouter(secureGroup *echo.Group, reg *services.Registry, clock clockwork.Clock, logger *zap.Logger) {
	ctrl := controllers.NewCalendarController(reg.Calendar, clock, logger)

	secureGroup.GET("/calendar", ctrl.GetCalendar)
}
