package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"reservation-system/internal/entities"
	apperrors "reservation-system/pkg/errors"
)

const (
	userTable  = "users"
	userFields = "id, name, email, role, password_hash, display_color, created_at, updated_at"
)

type UserRepositoryInterface interface {
	GetUsers(ctx context.Context) ([]entities.User, error)
	FindUser(ctx context.Context, id string) (*entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	CreateUser(ctx context.Context, user *entities.User) error
	// UpdateUser never touches the stored password hash.
	UpdateUser(ctx context.Context, user *entities.User) error
	SetPasswordHash(ctx context.Context, id string, hash string) error
	DeleteUser(ctx context.Context, id string) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PasswordHash, &u.DisplayColor, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err, nil)
	}
	u.Role = entities.Role(role)
	return &u, nil
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]entities.User, error) {
	query, args, err := psql.Select(userFields).From(userTable).OrderBy("lower(name)", "created_at").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := conn(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) FindUser(ctx context.Context, id string) (*entities.User, error) {
	query, args, err := psql.Select(userFields).From(userTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(conn(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	query, args, err := psql.Select(userFields).From(userTable).
		Where(sq.Expr("lower(email) = lower(?)", email)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(conn(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) error {
	query, args, err := psql.Insert(userTable).
		Columns("id", "name", "email", "role", "password_hash", "display_color", "created_at", "updated_at").
		Values(user.ID, user.Name, user.Email, string(user.Role), user.PasswordHash, user.DisplayColor, user.CreatedAt, user.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := conn(ctx, r.storage).Exec(ctx, query, args...); err != nil {
		r.logger.Error("UserRepository.CreateUser: insert failed", zap.String("userID", user.ID), zap.Error(err))
		return mapPgError(err, nil)
	}
	return nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	query, args, err := psql.Update(userTable).
		Set("name", user.Name).
		Set("email", user.Email).
		Set("role", string(user.Role)).
		Set("display_color", user.DisplayColor).
		Set("updated_at", user.UpdatedAt).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, conn(ctx, r.storage), query, args, nil)
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, id string, hash string) error {
	query, args, err := psql.Update(userTable).
		Set("password_hash", hash).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, conn(ctx, r.storage), query, args, nil)
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	query, args, err := psql.Delete(userTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, conn(ctx, r.storage), query, args, apperrors.ErrReferenced)
}
