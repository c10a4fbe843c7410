package utils

import (
	"context"

	"reservation-system/internal/entities"
	"reservation-system/pkg/contextkeys"
	apperrors "reservation-system/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(string)
	if !ok || userID == "" {
		return "", apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetUserRoleFromCtx(ctx context.Context) (entities.Role, error) {
	role, ok := ctx.Value(contextkeys.UserRoleKey).(entities.Role)
	if !ok {
		return "", apperrors.ErrForbidden
	}
	return role, nil
}

// ActorFromCtx is the caller id for audit events; empty for CLI and seed runs.
func ActorFromCtx(ctx context.Context) string {
	userID, _ := GetUserIDFromCtx(ctx)
	return userID
}

func WithUser(ctx context.Context, userID string, role entities.Role) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, userID)
	return context.WithValue(ctx, contextkeys.UserRoleKey, role)
}
