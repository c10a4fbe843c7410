package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"reservation-system/internal/controllers"
	"reservation-system/internal/services"
)

func runUserRouter(secureGroup *echo.Group, adminOnly echo.MiddlewareFunc, reg *services.Registry, logger *zap.Logger) {
	ctrl := controllers.NewUserController(reg.Users, logger)

	secureGroup.GET("/users", ctrl.GetUsers)
	secureGroup.GET("/users/:id", ctrl.FindUser)
	secureGroup.POST("/users", ctrl.CreateUser, adminOnly)
	secureGroup.PUT("/users/:id", ctrl.UpdateUser, adminOnly)
	secureGroup.PUT("/users/:id/credential", ctrl.SetCredential, adminOnly)
	secureGroup.DELETE("/users/:id", ctrl.DeleteUser, adminOnly)
}
