package routes

import (
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"reservation-system/internal/controllers"
	"reservation-system/internal/entities"
	"reservation-system/internal/services"
	"reservation-system/pkg/filestorage"
	"reservation-system/pkg/middleware"
	"reservation-system/pkg/service"
)

// InitRouter mounts the public health check and the authenticated /api
// tree. Catalogue mutations and imports additionally need the admin role.
// archive may be nil.
func InitRouter(
	e *echo.Echo,
	reg *services.Registry,
	jwtSvc service.JWTService,
	archive filestorage.FileStorageInterface,
	clock clockwork.Clock,
	logger *zap.Logger,
) {
	logger.Info("InitRouter: mounting routes")

	e.GET("/healthz", controllers.Healthz)

	authMW := middleware.NewAuthMiddleware(jwtSvc, reg.Roles, logger.Named("auth"))
	secureGroup := e.Group("/api", authMW.Auth)
	adminOnly := authMW.RequireRole(entities.RoleAdmin)

	runEquipmentRouter(secureGroup, adminOnly, reg, archive, logger.Named("equipment"))
	runCompanyRouter(secureGroup, adminOnly, reg, archive, logger.Named("companies"))
	runUserRouter(secureGroup, adminOnly, reg, logger.Named("users"))
	runReservationRouter(secureGroup, reg, logger.Named("reservations"))
	runStagingRouter(secureGroup, reg, logger.Named("staging"))
	runCalendarRouter(secureGroup, reg, clock, logger.Named("calendar"))

	logger.Info("InitRouter: routes mounted")
}
