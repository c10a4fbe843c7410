package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"reservation-system/internal/controllers"
	"reservation-system/internal/services"
)

func runReservationRouter(secureGroup *echo.Group, reg *services.Registry, logger *zap.Logger) {
	ctrl := controllers.NewReservationController(reg.Reservations, logger)

	secureGroup.GET("/reservations", ctrl.GetReservations)
	secureGroup.GET("/reservations/:id", ctrl.FindReservation)
	secureGroup.POST("/reservations", ctrl.CreateReservation)
	secureGroup.POST("/reservations/batch", ctrl.CreateBatchReservations)
	secureGroup.PUT("/reservations/:id", ctrl.UpdateReservation)
	secureGroup.DELETE("/reservations/:id", ctrl.DeleteReservation)

	secureGroup.GET("/technicians/:id/reservations", ctrl.GetTechnicianReservations)
	secureGroup.GET("/availability", ctrl.CheckAvailability)
}
