package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"reservation-system/internal/entities"
	"reservation-system/internal/repositories"
	apperrors "reservation-system/pkg/errors"
)

type AuthRoleServiceInterface interface {
	// GetUserRole fails with ErrUnauthorized when the user no longer exists.
	GetUserRole(ctx context.Context, userID string) (entities.Role, error)
	InvalidateUserRole(ctx context.Context, userID string) error
}

type cachedRole struct {
	Role entities.Role `json:"role"`
}

type AuthRoleService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewAuthRoleService accepts a nil cacheRepo, in which case every lookup
// goes to the store.
func NewAuthRoleService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cacheTTL time.Duration,
) AuthRoleServiceInterface {
	return &AuthRoleService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

func roleCacheKey(userID string) string {
	return fmt.Sprintf("auth:role:user:%s", userID)
}

func (s *AuthRoleService) GetUserRole(ctx context.Context, userID string) (entities.Role, error) {
	cacheKey := roleCacheKey(userID)

	if s.cacheRepo != nil {
		raw, errGet := s.cacheRepo.Get(ctx, cacheKey)
		if errGet == nil {
			var cached cachedRole
			if err := json.Unmarshal([]byte(raw), &cached); err == nil && cached.Role.Valid() {
				s.logger.Debug("AuthRoleService: role served from cache", zap.String("userID", userID))
				return cached.Role, nil
			}
			s.logger.Warn("AuthRoleService: corrupt cache entry", zap.String("key", cacheKey))
		} else if !errors.Is(errGet, repositories.ErrCacheMiss) {
			s.logger.Warn("AuthRoleService: cache read failed", zap.String("key", cacheKey), zap.Error(errGet))
		}
	}

	user, err := s.userRepo.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.ErrUnauthorized
		}
		s.logger.Error("AuthRoleService: user lookup failed", zap.String("userID", userID), zap.Error(err))
		return "", apperrors.ErrInternalServer
	}

	if s.cacheRepo != nil {
		payload, errMarshal := json.Marshal(cachedRole{Role: user.Role})
		if errMarshal == nil {
			if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheTTL); errSet != nil {
				s.logger.Warn("AuthRoleService: cache write failed", zap.String("key", cacheKey), zap.Error(errSet))
			}
		}
	}
	return user.Role, nil
}

func (s *AuthRoleService) InvalidateUserRole(ctx context.Context, userID string) error {
	if s.cacheRepo == nil {
		return nil
	}
	if err := s.cacheRepo.Del(ctx, roleCacheKey(userID)); err != nil {
		s.logger.Error("AuthRoleService: cache invalidation failed", zap.String("userID", userID), zap.Error(err))
		return err
	}
	return nil
}
