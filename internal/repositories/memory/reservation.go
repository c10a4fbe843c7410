package memory

import (
	"context"
	"slices"
	"time"

	"reservation-system/internal/entities"
	"reservation-system/internal/repositories"
	apperrors "reservation-system/pkg/errors"
)

type ReservationRepository struct {
	store *Store
}

func NewReservationRepository(store *Store) repositories.ReservationRepositoryInterface {
	return &ReservationRepository{store: store}
}

func (r *ReservationRepository) GetReservations(ctx context.Context, filter repositories.ReservationFilter) ([]entities.Reservation, error) {
	out := make([]entities.Reservation, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range st.reservationOrder {
			res := st.reservations[id]
			if filter.Matches(&res) {
				out = append(out, res)
			}
		}
		return nil
	})
	slices.SortStableFunc(out, func(a, b entities.Reservation) int {
		return a.PickupDate.Compare(b.PickupDate)
	})
	return out, err
}

func (r *ReservationRepository) CountReservations(ctx context.Context, filter repositories.ReservationFilter) (int, error) {
	total := 0
	err := r.store.read(ctx, func(st *state) error {
		for _, res := range st.reservations {
			if filter.Matches(&res) {
				total++
			}
		}
		return nil
	})
	return total, err
}

func (r *ReservationRepository) FindReservation(ctx context.Context, id string) (*entities.Reservation, error) {
	var out *entities.Reservation
	err := r.store.read(ctx, func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &res
		return nil
	})
	return out, err
}

// checkRow mirrors the foreign keys and the overlap exclusion constraint
// of the relational schema.
func checkRow(st *state, res *entities.Reservation) error {
	if _, ok := st.equipment[res.EquipmentID]; !ok {
		return apperrors.ErrNotFound
	}
	if _, ok := st.users[res.TechnicianID]; !ok {
		return apperrors.ErrNotFound
	}
	if _, ok := st.companies[res.CompanyID]; !ok {
		return apperrors.ErrNotFound
	}
	if res.ReturnDate.Before(res.PickupDate) {
		return apperrors.ErrValidation
	}
	for id, other := range st.reservations {
		if id != res.ID && other.EquipmentID == res.EquipmentID && other.Overlaps(res.PickupDate, res.ReturnDate) {
			return apperrors.ErrConflict
		}
	}
	return nil
}

func (r *ReservationRepository) CreateReservation(ctx context.Context, res *entities.Reservation) error {
	return r.store.write(ctx, func(st *state) error {
		if _, exists := st.reservations[res.ID]; exists {
			return apperrors.ErrUniqueness
		}
		if err := checkRow(st, res); err != nil {
			return err
		}
		st.reservations[res.ID] = *res
		st.reservationOrder = append(st.reservationOrder, res.ID)
		return nil
	})
}

func (r *ReservationRepository) UpdateReservation(ctx context.Context, res *entities.Reservation) error {
	return r.store.write(ctx, func(st *state) error {
		current, ok := st.reservations[res.ID]
		if !ok {
			return apperrors.ErrNotFound
		}
		if err := checkRow(st, res); err != nil {
			return err
		}
		updated := *res
		updated.CreatedAt = current.CreatedAt
		st.reservations[res.ID] = updated
		return nil
	})
}

func (r *ReservationRepository) SetStaged(ctx context.Context, id string, staged bool, updatedAt time.Time) error {
	return r.store.write(ctx, func(st *state) error {
		res, ok := st.reservations[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		res.Staged = staged
		res.UpdatedAt = updatedAt
		st.reservations[id] = res
		return nil
	})
}

func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.reservations[id]; !ok {
			return apperrors.ErrNotFound
		}
		delete(st.reservations, id)
		st.reservationOrder = removeID(st.reservationOrder, id)
		return nil
	})
}

func (r *ReservationRepository) DeleteReservationsByEquipment(ctx context.Context, equipmentID string) (int64, error) {
	var removed int64
	err := r.store.write(ctx, func(st *state) error {
		for id, res := range st.reservations {
			if res.EquipmentID == equipmentID {
				delete(st.reservations, id)
				st.reservationOrder = removeID(st.reservationOrder, id)
				removed++
			}
		}
		return nil
	})
	return removed, err
}
