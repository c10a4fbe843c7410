package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"reservation-system/internal/dto"
	"reservation-system/internal/entities"
	"reservation-system/internal/events"
	"reservation-system/internal/repositories"
	apperrors "reservation-system/pkg/errors"
	"reservation-system/pkg/eventbus"
	"reservation-system/pkg/types"
	"reservation-system/pkg/utils"
)

type ReservationServiceInterface interface {
	ListReservations(ctx context.Context, from, to *types.Date) ([]entities.Reservation, error)
	ListReservationsForTechnician(ctx context.Context, technicianID string) ([]entities.Reservation, error)
	ClassifyReservationsForTechnician(ctx context.Context, technicianID string) (*dto.TechnicianReservationsDTO, error)
	ListReservationsForEquipment(ctx context.Context, equipmentID string, onlyFutureOrActive bool) ([]entities.Reservation, error)
	FindReservation(ctx context.Context, id string) (*entities.Reservation, error)
	CheckAvailability(ctx context.Context, equipmentID string, pickup, ret types.Date, excludeID string) (*dto.AvailabilityDTO, error)
	CreateReservation(ctx context.Context, data dto.CreateReservationDTO) (*entities.Reservation, error)
	CreateBatchReservations(ctx context.Context, data dto.CreateBatchReservationDTO) ([]entities.Reservation, error)
	UpdateReservation(ctx context.Context, id string, data dto.UpdateReservationDTO) (*entities.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

type ReservationService struct {
	txManager       repositories.TxManagerInterface
	reservationRepo repositories.ReservationRepositoryInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	companyRepo     repositories.CompanyRepositoryInterface
	availability    AvailabilityServiceInterface
	bus             *eventbus.Bus
	clock           clockwork.Clock
	logger          *zap.Logger
}

func NewReservationService(
	txManager repositories.TxManagerInterface,
	reservationRepo repositories.ReservationRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	availability AvailabilityServiceInterface,
	bus *eventbus.Bus,
	clock clockwork.Clock,
	logger *zap.Logger,
) ReservationServiceInterface {
	return &ReservationService{
		txManager:       txManager,
		reservationRepo: reservationRepo,
		equipmentRepo:   equipmentRepo,
		userRepo:        userRepo,
		companyRepo:     companyRepo,
		availability:    availability,
		bus:             bus,
		clock:           clock,
		logger:          logger,
	}
}

func (s *ReservationService) today() types.Date {
	return types.DateOf(s.clock.Now())
}

// ListReservations returns reservations overlapping [from, to]; a nil bound
// is open.
func (s *ReservationService) ListReservations(ctx context.Context, from, to *types.Date) ([]entities.Reservation, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, apperrors.NewFieldValidationError(map[string]string{"to": "must be on or after from"})
	}
	return s.reservationRepo.GetReservations(ctx, repositories.ReservationFilter{From: from, To: to})
}

func (s *ReservationService) ListReservationsForTechnician(ctx context.Context, technicianID string) ([]entities.Reservation, error) {
	if _, err := s.userRepo.FindUser(ctx, technicianID); err != nil {
		return nil, notFound(err, "technician %s not found", technicianID)
	}
	return s.reservationRepo.GetReservations(ctx, repositories.ReservationFilter{TechnicianID: technicianID})
}

// ClassifyReservationsForTechnician splits the technician's bookings into
// upcoming (including current) and past, relative to the service clock.
// Upcoming is soonest first; past is most recent first.
func (s *ReservationService) ClassifyReservationsForTechnician(ctx context.Context, technicianID string) (*dto.TechnicianReservationsDTO, error) {
	list, err := s.ListReservationsForTechnician(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	out := &dto.TechnicianReservationsDTO{
		Upcoming: make([]entities.Reservation, 0),
		Past:     make([]entities.Reservation, 0),
	}
	for _, r := range list {
		if entities.PhaseOf(r, today) == entities.PhaseUpcoming {
			out.Upcoming = append(out.Upcoming, r)
		} else {
			out.Past = append(out.Past, r)
		}
	}
	slices.SortStableFunc(out.Past, func(a, b entities.Reservation) int {
		return b.PickupDate.Compare(a.PickupDate)
	})
	return out, nil
}

func (s *ReservationService) ListReservationsForEquipment(ctx context.Context, equipmentID string, onlyFutureOrActive bool) ([]entities.Reservation, error) {
	if _, err := s.equipmentRepo.FindEquipment(ctx, equipmentID); err != nil {
		return nil, notFound(err, "equipment %s not found", equipmentID)
	}
	filter := repositories.ReservationFilter{EquipmentID: equipmentID}
	if onlyFutureOrActive {
		today := s.today()
		filter.ReturnOnOrAfter = &today
	}
	return s.reservationRepo.GetReservations(ctx, filter)
}

func (s *ReservationService) FindReservation(ctx context.Context, id string) (*entities.Reservation, error) {
	res, err := s.reservationRepo.FindReservation(ctx, id)
	if err != nil {
		return nil, notFound(err, "reservation %s not found", id)
	}
	return res, nil
}

func (s *ReservationService) CheckAvailability(ctx context.Context, equipmentID string, pickup, ret types.Date, excludeID string) (*dto.AvailabilityDTO, error) {
	if ret.Before(pickup) {
		return nil, apperrors.NewFieldValidationError(map[string]string{"returnDate": "must be on or after pickupDate"})
	}
	if _, err := s.equipmentRepo.FindEquipment(ctx, equipmentID); err != nil {
		return nil, notFound(err, "equipment %s not found", equipmentID)
	}
	conflicts, err := s.availability.FindConflicts(ctx, equipmentID, pickup, ret, excludeID)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityDTO{
		EquipmentID: equipmentID,
		PickupDate:  pickup.String(),
		ReturnDate:  ret.String(),
		Available:   len(conflicts) == 0,
		Conflicts:   conflicts,
	}, nil
}

func (s *ReservationService) CreateReservation(ctx context.Context, data dto.CreateReservationDTO) (*entities.Reservation, error) {
	if err := validate.Validate(data); err != nil {
		return nil, err
	}
	pickup, ret, err := parseWindow(data.PickupDate, data.ReturnDate)
	if err != nil {
		return nil, err
	}

	res := &entities.Reservation{
		ID:           uuid.NewString(),
		EquipmentID:  data.EquipmentID,
		TechnicianID: data.TechnicianID,
		CompanyID:    data.CompanyID,
		PickupDate:   pickup,
		ReturnDate:   ret,
		Notes:        data.Notes,
		Staged:       false,
	}
	res.Touch(s.clock.Now())

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		equipment, err := s.lockEquipment(ctx, data.EquipmentID)
		if err != nil {
			return err
		}
		if err := s.checkParties(ctx, data.TechnicianID, data.CompanyID); err != nil {
			return err
		}
		if err := s.ensureAvailable(ctx, equipment, pickup, ret, ""); err != nil {
			return err
		}
		return s.reservationRepo.CreateReservation(ctx, res)
	})
	if err != nil {
		s.logger.Warn("reservation rejected",
			zap.String("equipmentID", data.EquipmentID),
			zap.Stringer("pickup", pickup),
			zap.Stringer("return", ret),
			zap.Error(err))
		return nil, err
	}

	s.bus.Publish(ctx, events.ReservationCreatedEvent{Reservation: *res, ActorID: utils.ActorFromCtx(ctx)})
	return res, nil
}

// CreateBatchReservations books every listed equipment for one shared
// window. Either all rows are committed or none are.
func (s *ReservationService) CreateBatchReservations(ctx context.Context, data dto.CreateBatchReservationDTO) ([]entities.Reservation, error) {
	if err := validate.Validate(data); err != nil {
		return nil, err
	}
	pickup, ret, err := parseWindow(data.PickupDate, data.ReturnDate)
	if err != nil {
		return nil, err
	}

	equipmentIDs := dedupe(data.EquipmentIDs)
	now := s.clock.Now()
	created := make([]entities.Reservation, 0, len(equipmentIDs))

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		equipment, err := s.lockEquipment(ctx, equipmentIDs...)
		if err != nil {
			return err
		}
		if err := s.checkParties(ctx, data.TechnicianID, data.CompanyID); err != nil {
			return err
		}

		var booked []string
		for _, id := range equipmentIDs {
			taken, err := s.availability.HasConflict(ctx, id, pickup, ret, "")
			if err != nil {
				return err
			}
			if taken {
				booked = append(booked, equipment[id].GageID)
			}
		}
		if len(booked) > 0 {
			return conflictError(booked)
		}

		for _, id := range equipmentIDs {
			res := entities.Reservation{
				ID:           uuid.NewString(),
				EquipmentID:  id,
				TechnicianID: data.TechnicianID,
				CompanyID:    data.CompanyID,
				PickupDate:   pickup,
				ReturnDate:   ret,
				Notes:        data.Notes,
			}
			res.Touch(now)
			if err := s.reservationRepo.CreateReservation(ctx, &res); err != nil {
				return err
			}
			created = append(created, res)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("batch reservation rejected",
			zap.Strings("equipmentIDs", equipmentIDs),
			zap.Stringer("pickup", pickup),
			zap.Stringer("return", ret),
			zap.Error(err))
		return nil, err
	}

	s.bus.Publish(ctx, events.ReservationBatchCreatedEvent{Reservations: created, ActorID: utils.ActorFromCtx(ctx)})
	return created, nil
}

func (s *ReservationService) UpdateReservation(ctx context.Context, id string, data dto.UpdateReservationDTO) (*entities.Reservation, error) {
	if err := validate.Validate(data); err != nil {
		return nil, err
	}
	pickup, ret, err := parseWindow(data.PickupDate, data.ReturnDate)
	if err != nil {
		return nil, err
	}

	var before, after entities.Reservation
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.reservationRepo.FindReservation(ctx, id)
		if err != nil {
			return notFound(err, "reservation %s not found", id)
		}
		before = *current

		equipment, err := s.lockEquipment(ctx, data.EquipmentID)
		if err != nil {
			return err
		}
		if err := s.checkParties(ctx, data.TechnicianID, data.CompanyID); err != nil {
			return err
		}
		if err := s.ensureAvailable(ctx, equipment, pickup, ret, id); err != nil {
			return err
		}

		after = before
		after.EquipmentID = data.EquipmentID
		after.TechnicianID = data.TechnicianID
		after.CompanyID = data.CompanyID
		after.PickupDate = pickup
		after.ReturnDate = ret
		after.Notes = data.Notes
		if data.Staged != nil {
			after.Staged = *data.Staged
		}
		after.Touch(s.clock.Now())
		return s.reservationRepo.UpdateReservation(ctx, &after)
	})
	if err != nil {
		s.logger.Warn("reservation update rejected", zap.String("reservationID", id), zap.Error(err))
		return nil, err
	}

	s.bus.Publish(ctx, events.ReservationUpdatedEvent{Before: before, After: after, ActorID: utils.ActorFromCtx(ctx)})
	return &after, nil
}

func (s *ReservationService) DeleteReservation(ctx context.Context, id string) error {
	var removed entities.Reservation
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.reservationRepo.FindReservation(ctx, id)
		if err != nil {
			return notFound(err, "reservation %s not found", id)
		}
		removed = *current
		return s.reservationRepo.DeleteReservation(ctx, id)
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.ReservationDeletedEvent{Reservation: removed, ActorID: utils.ActorFromCtx(ctx)})
	return nil
}

// lockEquipment takes row locks in sorted id order, so two batches sharing
// equipment cannot deadlock, and loads the locked rows.
func (s *ReservationService) lockEquipment(ctx context.Context, ids ...string) (map[string]*entities.Equipment, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	locked := make(map[string]*entities.Equipment, len(ids))
	if err := s.equipmentRepo.LockEquipment(ctx, sorted...); err != nil {
		return nil, notFound(err, "equipment %s not found", strings.Join(sorted, ", "))
	}
	for _, id := range sorted {
		equipment, err := s.equipmentRepo.FindEquipment(ctx, id)
		if err != nil {
			return nil, notFound(err, "equipment %s not found", id)
		}
		locked[id] = equipment
	}
	return locked, nil
}

func (s *ReservationService) checkParties(ctx context.Context, technicianID, companyID string) error {
	if _, err := s.userRepo.FindUser(ctx, technicianID); err != nil {
		return notFound(err, "technician %s not found", technicianID)
	}
	if _, err := s.companyRepo.FindCompany(ctx, companyID); err != nil {
		return notFound(err, "company %s not found", companyID)
	}
	return nil
}

func (s *ReservationService) ensureAvailable(ctx context.Context, equipment map[string]*entities.Equipment, pickup, ret types.Date, excludeID string) error {
	for id, e := range equipment {
		taken, err := s.availability.HasConflict(ctx, id, pickup, ret, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return conflictError([]string{e.GageID})
		}
	}
	return nil
}

func conflictError(gageIDs []string) error {
	quoted := make([]string, len(gageIDs))
	for i, g := range gageIDs {
		quoted[i] = fmt.Sprintf("%q", g)
	}
	if len(quoted) == 1 {
		return apperrors.NewConflictError("Equipment %s is already booked for the selected dates.", quoted[0])
	}
	return apperrors.NewConflictError("Equipment %s are already booked for the selected dates.", strings.Join(quoted, ", "))
}

// dedupe keeps the first occurrence of each id, in order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
