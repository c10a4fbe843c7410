package memory

import (
	"context"
	"slices"
	"strings"

	"reservation-system/internal/entities"
	"reservation-system/internal/repositories"
	apperrors "reservation-system/pkg/errors"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) repositories.UserRepositoryInterface {
	return &UserRepository{store: store}
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]entities.User, error) {
	var out []entities.User
	err := r.store.read(ctx, func(st *state) error {
		out = make([]entities.User, 0, len(st.userOrder))
		for _, id := range st.userOrder {
			out = append(out, st.users[id])
		}
		return nil
	})
	slices.SortStableFunc(out, func(a, b entities.User) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, err
}

func (r *UserRepository) FindUser(ctx context.Context, id string) (*entities.User, error) {
	var out *entities.User
	err := r.store.read(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	key := entities.NormalizeKey(email)
	var out *entities.User
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range st.userOrder {
			u := st.users[id]
			if key != "" && u.NormalizedEmail() == key {
				out = &u
				return nil
			}
		}
		return apperrors.ErrNotFound
	})
	return out, err
}

func emailTaken(st *state, user *entities.User) bool {
	key := user.NormalizedEmail()
	if key == "" {
		return false
	}
	for id, other := range st.users {
		if id != user.ID && other.NormalizedEmail() == key {
			return true
		}
	}
	return false
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.store.write(ctx, func(st *state) error {
		if _, exists := st.users[user.ID]; exists {
			return apperrors.ErrUniqueness
		}
		if emailTaken(st, user) {
			return apperrors.ErrUniqueness
		}
		st.users[user.ID] = *user
		st.userOrder = append(st.userOrder, user.ID)
		return nil
	})
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	return r.store.write(ctx, func(st *state) error {
		current, ok := st.users[user.ID]
		if !ok {
			return apperrors.ErrNotFound
		}
		if emailTaken(st, user) {
			return apperrors.ErrUniqueness
		}
		updated := *user
		updated.PasswordHash = current.PasswordHash
		updated.CreatedAt = current.CreatedAt
		st.users[user.ID] = updated
		return nil
	})
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, id string, hash string) error {
	return r.store.write(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		u.PasswordHash.SetValid(hash)
		st.users[id] = u
		return nil
	})
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return apperrors.ErrNotFound
		}
		for _, res := range st.reservations {
			if res.TechnicianID == id {
				return apperrors.ErrReferenced
			}
		}
		delete(st.users, id)
		st.userOrder = removeID(st.userOrder, id)
		return nil
	})
}
