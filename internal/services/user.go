package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"reservation-system/internal/dto"
	"reservation-system/internal/entities"
	"reservation-system/internal/repositories"
	apperrors "reservation-system/pkg/errors"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context) ([]dto.UserDTO, error)
	FindUser(ctx context.Context, id string) (*dto.UserDTO, error)
	CreateUser(ctx context.Context, data dto.CreateUserDTO) (*dto.UserDTO, error)
	UpdateUser(ctx context.Context, id string, data dto.UpdateUserDTO) (*dto.UserDTO, error)
	DeleteUser(ctx context.Context, id string) error
	SetCredential(ctx context.Context, id string, data dto.SetCredentialDTO) error
	// VerifyCredential reports ErrInvalidCredentials for a missing credential
	// or a wrong secret.
	VerifyCredential(ctx context.Context, id string, secret string) error
}

type UserService struct {
	txManager       repositories.TxManagerInterface
	userRepo        repositories.UserRepositoryInterface
	reservationRepo repositories.ReservationRepositoryInterface
	roles           AuthRoleServiceInterface
	clock           clockwork.Clock
	logger          *zap.Logger
}

func NewUserService(
	txManager repositories.TxManagerInterface,
	userRepo repositories.UserRepositoryInterface,
	reservationRepo repositories.ReservationRepositoryInterface,
	roles AuthRoleServiceInterface,
	clock clockwork.Clock,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{
		txManager:       txManager,
		userRepo:        userRepo,
		reservationRepo: reservationRepo,
		roles:           roles,
		clock:           clock,
		logger:          logger,
	}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

func userEntityToDTO(entity *entities.User) dto.UserDTO {
	return dto.UserDTO{
		ID:            entity.ID,
		Name:          entity.Name,
		Email:         entity.Email,
		Role:          string(entity.Role),
		DisplayColor:  ResolveDisplayColor(entity),
		CustomColor:   entity.DisplayColor.Valid && entity.DisplayColor.String != "",
		HasCredential: entity.HasCredential(),
		CreatedAt:     entity.CreatedAt,
		UpdatedAt:     entity.UpdatedAt,
	}
}

func (s *UserService) GetUsers(ctx context.Context) ([]dto.UserDTO, error) {
	users, err := s.userRepo.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		out = append(out, userEntityToDTO(&users[i]))
	}
	return out, nil
}

func (s *UserService) FindUser(ctx context.Context, id string) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindUser(ctx, id)
	if err != nil {
		return nil, notFound(err, "user %s not found", id)
	}
	out := userEntityToDTO(user)
	return &out, nil
}

func (s *UserService) CreateUser(ctx context.Context, data dto.CreateUserDTO) (*dto.UserDTO, error) {
	if err := validate.Validate(data); err != nil {
		return nil, err
	}
	user := &entities.User{ID: uuid.NewString()}
	applyUserFields(user, dto.UpdateUserDTO(data))
	user.Touch(s.clock.Now())

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailFree(ctx, user); err != nil {
			return err
		}
		return s.userRepo.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("userID", user.ID), zap.String("role", string(user.Role)))
	out := userEntityToDTO(user)
	return &out, nil
}

// UpdateUser leaves the stored credential untouched.
func (s *UserService) UpdateUser(ctx context.Context, id string, data dto.UpdateUserDTO) (*dto.UserDTO, error) {
	if err := validate.Validate(data); err != nil {
		return nil, err
	}

	var updated *entities.User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.FindUser(ctx, id)
		if err != nil {
			return notFound(err, "user %s not found", id)
		}
		applyUserFields(user, data)
		if err := s.ensureEmailFree(ctx, user); err != nil {
			return err
		}
		user.Touch(s.clock.Now())
		if err := s.userRepo.UpdateUser(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.roles.InvalidateUserRole(ctx, id)
	out := userEntityToDTO(updated)
	return &out, nil
}

// DeleteUser refuses while the user is the technician on any reservation.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.FindUser(ctx, id); err != nil {
			return notFound(err, "user %s not found", id)
		}
		n, err := s.reservationRepo.CountReservations(ctx, repositories.ReservationFilter{TechnicianID: id})
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.NewReferencedError("user is the technician on %d reservation(s)", n)
		}
		return s.userRepo.DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}
	_ = s.roles.InvalidateUserRole(ctx, id)
	return nil
}

func (s *UserService) SetCredential(ctx context.Context, id string, data dto.SetCredentialDTO) error {
	if err := validate.Validate(data); err != nil {
		return err
	}
	hash, err := hashPassword(data.Secret)
	if err != nil {
		return err
	}
	if err := s.userRepo.SetPasswordHash(ctx, id, hash); err != nil {
		return notFound(err, "user %s not found", id)
	}
	s.logger.Info("credential set", zap.String("userID", id))
	return nil
}

func (s *UserService) VerifyCredential(ctx context.Context, id string, secret string) error {
	user, err := s.userRepo.FindUser(ctx, id)
	if err != nil {
		return notFound(err, "user %s not found", id)
	}
	if !user.HasCredential() {
		return apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(secret)); err != nil {
		return apperrors.ErrInvalidCredentials
	}
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, user *entities.User) error {
	if !user.Email.Valid {
		return nil
	}
	existing, err := s.userRepo.FindUserByEmail(ctx, user.Email.String)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != user.ID:
		return apperrors.NewUniquenessError("email %q is already in use", user.Email.String)
	}
	return nil
}

func applyUserFields(user *entities.User, data dto.UpdateUserDTO) {
	user.Name = strings.TrimSpace(data.Name)
	user.Role = entities.Role(data.Role)
	user.Email = trimmedOrNull(data.Email)
	user.DisplayColor = trimmedOrNull(data.DisplayColor)
}

// trimmedOrNull maps blank strings to null so absence has one spelling.
func trimmedOrNull(s null.String) null.String {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return null.String{}
	}
	return null.StringFrom(strings.TrimSpace(s.String))
}
