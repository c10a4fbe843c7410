package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"reservation-system/internal/bootstrap"
	"reservation-system/internal/listeners"
	"reservation-system/internal/routes"
	"reservation-system/internal/services"
	"reservation-system/pkg/api"
	"reservation-system/pkg/config"
	apperrors "reservation-system/pkg/errors"
	"reservation-system/pkg/eventbus"
	"reservation-system/pkg/filestorage"
	applogger "reservation-system/pkg/logger"
	appmiddleware "reservation-system/pkg/middleware"
	"reservation-system/pkg/service"
	"reservation-system/pkg/validation"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "internal server error", err, nil)
				_ = api.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return slices.Contains(cfg.Server.AllowedOrigins, origin), nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))
	e.Use(appmiddleware.RequestLogger(logger.Named("http")))

	e.Validator = validation.New()

	ctx := context.Background()
	storage, err := bootstrap.OpenStorage(ctx, cfg, logger.Named("storage"))
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer storage.Close()

	clock := clockwork.NewRealClock()
	bus := eventbus.New(logger.Named("events"))
	listeners.NewAuditListener(logger.Named("audit")).Register(bus)

	reg := services.NewRegistry(storage.Repos, bus, clock, logger, cfg.Redis.RoleCacheTTL)
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL, clock)

	var archive filestorage.FileStorageInterface
	if cfg.Storage.ImportArchiveDir != "" {
		archive, err = filestorage.NewLocalFileStorage(cfg.Storage.ImportArchiveDir, clock)
		if err != nil {
			logger.Fatal("failed to open import archive", zap.String("dir", cfg.Storage.ImportArchiveDir), zap.Error(err))
		}
	}

	routes.InitRouter(e, reg, jwtSvc, archive, clock, logger)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	bus.Wait()
	logger.Info("server stopped")
}
