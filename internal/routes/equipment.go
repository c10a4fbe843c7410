package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"reservation-system/internal/controllers"
	"reservation-system/internal/services"
	"reservation-system/pkg/filestorage"
)

func runEquipmentRouter(secureGroup *echo.Group, adminOnly echo.MiddlewareFunc, reg *services.Registry, archive filestorage.FileStorageInterface, logger *zap.Logger) {
	ctrl := controllers.NewEquipmentController(reg.Equipment, reg.Reservations, archive, logger)

	secureGroup.GET("/equipment", ctrl.GetEquipments)
	secureGroup.GET("/equipment/:id", ctrl.FindEquipment)
	secureGroup.GET("/equipment/:id/reservations", ctrl.GetEquipmentReservations)
	secureGroup.POST("/equipment", ctrl.CreateEquipment, adminOnly)
	secureGroup.POST("/equipment/import", ctrl.ImportEquipment, adminOnly)
	secureGroup.PUT("/equipment/:id", ctrl.UpdateEquipment, adminOnly)
	secureGroup.DELETE("/equipment/:id", ctrl.DeleteEquipment, adminOnly)
}
