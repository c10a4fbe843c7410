package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"reservation-system/internal/entities"
	"reservation-system/internal/repositories"
	apperrors "reservation-system/pkg/errors"
)

type EquipmentRepository struct {
	store *Store
}

func NewEquipmentRepository(store *Store) repositories.EquipmentRepositoryInterface {
	return &EquipmentRepository{store: store}
}

func (r *EquipmentRepository) GetEquipments(ctx context.Context) ([]entities.Equipment, error) {
	var out []entities.Equipment
	err := r.store.read(ctx, func(st *state) error {
		out = make([]entities.Equipment, 0, len(st.equipmentOrder))
		for _, id := range st.equipmentOrder {
			out = append(out, st.equipment[id])
		}
		return nil
	})
	slices.SortStableFunc(out, func(a, b entities.Equipment) int {
		return strings.Compare(a.NormalizedGageID(), b.NormalizedGageID())
	})
	return out, err
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id string) (*entities.Equipment, error) {
	var out *entities.Equipment
	err := r.store.read(ctx, func(st *state) error {
		e, ok := st.equipment[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &e
		return nil
	})
	return out, err
}

func (r *EquipmentRepository) FindEquipmentByGageID(ctx context.Context, gageID string) (*entities.Equipment, error) {
	key := entities.NormalizeKey(gageID)
	var out *entities.Equipment
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range st.equipmentOrder {
			e := st.equipment[id]
			if e.NormalizedGageID() == key {
				out = &e
				return nil
			}
		}
		return apperrors.ErrNotFound
	})
	return out, err
}

func gageIDTaken(st *state, equipment *entities.Equipment) bool {
	key := equipment.NormalizedGageID()
	for id, other := range st.equipment {
		if id != equipment.ID && other.NormalizedGageID() == key {
			return true
		}
	}
	return false
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, equipment *entities.Equipment) error {
	return r.store.write(ctx, func(st *state) error {
		if _, exists := st.equipment[equipment.ID]; exists || gageIDTaken(st, equipment) {
			return apperrors.ErrUniqueness
		}
		st.equipment[equipment.ID] = *equipment
		st.equipmentOrder = append(st.equipmentOrder, equipment.ID)
		return nil
	})
}

func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, equipment *entities.Equipment) error {
	return r.store.write(ctx, func(st *state) error {
		current, ok := st.equipment[equipment.ID]
		if !ok {
			return apperrors.ErrNotFound
		}
		if gageIDTaken(st, equipment) {
			return apperrors.ErrUniqueness
		}
		updated := *equipment
		updated.CreatedAt = current.CreatedAt
		st.equipment[equipment.ID] = updated
		return nil
	})
}

// DeleteEquipment cascades to the equipment's reservations.
func (r *EquipmentRepository) DeleteEquipment(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.equipment[id]; !ok {
			return apperrors.ErrNotFound
		}
		for resID, res := range st.reservations {
			if res.EquipmentID == id {
				delete(st.reservations, resID)
				st.reservationOrder = removeID(st.reservationOrder, resID)
			}
		}
		delete(st.equipment, id)
		st.equipmentOrder = removeID(st.equipmentOrder, id)
		return nil
	})
}

// LockEquipment only checks existence: a transaction already holds the
// store's exclusive lock.
func (r *EquipmentRepository) LockEquipment(ctx context.Context, ids ...string) error {
	return r.store.read(ctx, func(st *state) error {
		for _, id := range ids {
			if _, ok := st.equipment[id]; !ok {
				return fmt.Errorf("%w: equipment %s", apperrors.ErrNotFound, id)
			}
		}
		return nil
	})
}
