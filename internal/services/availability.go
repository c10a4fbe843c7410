package services

import (
	"context"

	"go.uber.org/zap"

	"reservation-system/internal/entities"
	"reservation-system/internal/repositories"
	"reservation-system/pkg/types"
)

type AvailabilityServiceInterface interface {
	HasConflict(ctx context.Context, equipmentID string, pickup, ret types.Date, excludeID string) (bool, error)
	FindConflicts(ctx context.Context, equipmentID string, pickup, ret types.Date, excludeID string) ([]entities.Reservation, error)
}

type AvailabilityService struct {
	reservationRepo repositories.ReservationRepositoryInterface
	logger          *zap.Logger
}

func NewAvailabilityService(reservationRepo repositories.ReservationRepositoryInterface, logger *zap.Logger) AvailabilityServiceInterface {
	return &AvailabilityService{reservationRepo: reservationRepo, logger: logger}
}

// HasConflict must run inside the writer's transaction, after the equipment
// row is locked, for the answer to hold at insert time.
func (s *AvailabilityService) HasConflict(ctx context.Context, equipmentID string, pickup, ret types.Date, excludeID string) (bool, error) {
	conflicts, err := s.FindConflicts(ctx, equipmentID, pickup, ret, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

// FindConflicts returns every reservation of equipmentID whose inclusive
// window shares a day with [pickup, ret]. Reversed bounds are tolerated.
func (s *AvailabilityService) FindConflicts(ctx context.Context, equipmentID string, pickup, ret types.Date, excludeID string) ([]entities.Reservation, error) {
	from, to := pickup, ret
	if to.Before(from) {
		from, to = to, from
	}

	candidates, err := s.reservationRepo.GetReservations(ctx, repositories.ReservationFilter{
		EquipmentID: equipmentID,
		ExcludeID:   excludeID,
		From:        &from,
		To:          &to,
	})
	if err != nil {
		s.logger.Error("availability lookup failed", zap.String("equipmentID", equipmentID), zap.Error(err))
		return nil, err
	}

	conflicts := make([]entities.Reservation, 0, len(candidates))
	for i := range candidates {
		if candidates[i].Overlaps(from, to) {
			conflicts = append(conflicts, candidates[i])
		}
	}
	return conflicts, nil
}
