package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"reservation-system/internal/entities"
	"reservation-system/pkg/api"
	apperrors "reservation-system/pkg/errors"
	"reservation-system/pkg/service"
	"reservation-system/pkg/utils"
)

// RoleResolver looks up the current role of an authenticated user.
type RoleResolver interface {
	GetUserRole(ctx context.Context, userID string) (entities.Role, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	roles      RoleResolver
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, roles RoleResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		roles:      roles,
		logger:     logger,
	}
}

// Auth accepts "Bearer <token>" whose userId names an existing user, and
// stores the user id and role in the request context.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return api.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return api.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Debug("AuthMiddleware: token rejected", zap.Error(err))
			return api.ErrorResponse(c, err, m.logger)
		}

		ctx := c.Request().Context()
		role, err := m.roles.GetUserRole(ctx, claims.UserID)
		if err != nil {
			m.logger.Warn("AuthMiddleware: user lookup failed", zap.String("userID", claims.UserID), zap.Error(err))
			return api.ErrorResponse(c, err, m.logger)
		}

		c.SetRequest(c.Request().WithContext(utils.WithUser(ctx, claims.UserID, role)))
		return next(c)
	}
}

// RequireRole must run after Auth.
func (m *AuthMiddleware) RequireRole(allowed ...entities.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, err := utils.GetUserRoleFromCtx(c.Request().Context())
			if err != nil {
				return api.ErrorResponse(c, err, m.logger)
			}
			for _, r := range allowed {
				if role == r {
					return next(c)
				}
			}
			return api.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
		}
	}
}
