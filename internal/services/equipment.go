package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aarondl/null/v8"
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

type EquipmentServiceInterface interface {
	GetEquipments(ctx context.Context) ([]entities.Equipment, error)
	FindEquipment(ctx context.Context, id string) (*entities.Equipment, error)
	CreateEquipment(ctx context.Context, data dto.CreateEquipmentDTO) (*entities.Equipment, error)
	UpdateEquipment(ctx context.Context, id string, data dto.UpdateEquipmentDTO) (*entities.Equipment, error)
	// DeleteEquipment removes the equipment and every reservation of it,
	// returning how many reservations went with it.
	DeleteEquipment(ctx context.Context, id string) (int64, error)
	BulkUpsertEquipment(ctx context.Context, rows []dto.EquipmentImportRow) (*dto.BulkUpsertResultDTO, error)
}

type EquipmentService struct {
	txManager       repositories.TxManagerInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	reservationRepo repositories.ReservationRepositoryInterface
	bus             *eventbus.Bus
	clock           clockwork.Clock
	logger          *zap.Logger
}

func NewEquipmentService(
	txManager repositories.TxManagerInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	reservationRepo repositories.ReservationRepositoryInterface,
	bus *eventbus.Bus,
	clock clockwork.Clock,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		txManager:       txManager,
		equipmentRepo:   equipmentRepo,
		reservationRepo: reservationRepo,
		bus:             bus,
		clock:           clock,
		logger:          logger,
	}
}

func (s *EquipmentService) GetEquipments(ctx context.Context) ([]entities.Equipment, error) {
	return s.equipmentRepo.GetEquipments(ctx)
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id string) (*entities.Equipment, error) {
	e, err := s.equipmentRepo.FindEquipment(ctx, id)
	if err != nil {
		return nil, notFound(err, "equipment %s not found", id)
	}
	return e, nil
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, data dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	if err := validate.Validate(data); err != nil {
		return nil, err
	}
	e := &entities.Equipment{ID: uuid.NewString()}
	if err := applyEquipmentFields(e, dto.UpdateEquipmentDTO(data)); err != nil {
		return nil, err
	}
	e.Touch(s.clock.Now())

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureGageIDFree(ctx, e); err != nil {
			return err
		}
		return s.equipmentRepo.CreateEquipment(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("equipment created", zap.String("equipmentID", e.ID), zap.String("gageID", e.GageID))
	return e, nil
}

func (s *EquipmentService) UpdateEquipment(ctx context.Context, id string, data dto.UpdateEquipmentDTO) (*entities.Equipment, error) {
	if err := validate.Validate(data); err != nil {
		return nil, err
	}

	var updated *entities.Equipment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		e, err := s.equipmentRepo.FindEquipment(ctx, id)
		if err != nil {
			return notFound(err, "equipment %s not found", id)
		}
		if err := applyEquipmentFields(e, data); err != nil {
			return err
		}
		if err := s.ensureGageIDFree(ctx, e); err != nil {
			return err
		}
		e.Touch(s.clock.Now())
		if err := s.equipmentRepo.UpdateEquipment(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EquipmentService) DeleteEquipment(ctx context.Context, id string) (int64, error) {
	var (
		removed  entities.Equipment
		cascaded int64
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.equipmentRepo.LockEquipment(ctx, id); err != nil {
			return notFound(err, "equipment %s not found", id)
		}
		e, err := s.equipmentRepo.FindEquipment(ctx, id)
		if err != nil {
			return notFound(err, "equipment %s not found", id)
		}
		removed = *e

		cascaded, err = s.reservationRepo.DeleteReservationsByEquipment(ctx, id)
		if err != nil {
			return err
		}
		return s.equipmentRepo.DeleteEquipment(ctx, id)
	})
	if err != nil {
		return 0, err
	}

	s.bus.Publish(ctx, events.EquipmentDeletedEvent{
		Equipment:            removed,
		CascadedReservations: cascaded,
		ActorID:              utils.ActorFromCtx(ctx),
	})
	return cascaded, nil
}

// BulkUpsertEquipment matches rows on case-insensitive gageId. Each row
// commits on its own; a bad row lands in Errors and the rest carry on.
func (s *EquipmentService) BulkUpsertEquipment(ctx context.Context, rows []dto.EquipmentImportRow) (*dto.BulkUpsertResultDTO, error) {
	result := &dto.BulkUpsertResultDTO{Errors: []dto.RowError{}}
	seen := make(map[string]int, len(rows))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row.GageID = strings.TrimSpace(row.GageID)
		row.Description = strings.TrimSpace(row.Description)
		switch {
		case row.GageID == "":
			result.Errors = append(result.Errors, rowError(row.Row, row.RowData, "gageId is required"))
			continue
		case row.Description == "":
			result.Errors = append(result.Errors, rowError(row.Row, row.RowData, "description is required"))
			continue
		}

		key := entities.NormalizeKey(row.GageID)
		if first, dup := seen[key]; dup {
			result.Errors = append(result.Errors, rowError(row.Row, row.RowData,
				fmt.Sprintf("gageId %q repeats row %d", row.GageID, first)))
			continue
		}
		seen[key] = row.Row

		created, err := s.upsertRow(ctx, row)
		if err != nil {
			result.Errors = append(result.Errors, rowError(row.Row, row.RowData, apperrors.Message(err)))
			continue
		}
		if created {
			result.CreatedCount++
		} else {
			result.UpdatedCount++
		}
	}

	s.logger.Info("equipment import finished",
		zap.Int("created", result.CreatedCount),
		zap.Int("updated", result.UpdatedCount),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (s *EquipmentService) upsertRow(ctx context.Context, row dto.EquipmentImportRow) (bool, error) {
	var imageURL *null.String
	if row.ImageURL != nil {
		v, err := optionalURL(*row.ImageURL)
		if err != nil {
			return false, err
		}
		imageURL = &v
	}
	var dueDate *types.NullDate
	if row.CalibrationDueDate != nil {
		v, err := types.ParseNullDate(strings.TrimSpace(*row.CalibrationDueDate))
		if err != nil {
			return false, apperrors.NewValidationError("calibrationDueDate: %s", err.Error())
		}
		dueDate = &v
	}

	created := false
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		e, err := s.equipmentRepo.FindEquipmentByGageID(ctx, row.GageID)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			e = &entities.Equipment{ID: uuid.NewString(), GageID: row.GageID}
			created = true
		case err != nil:
			return err
		}

		e.Description = row.Description
		e.Manufacturer = strings.TrimSpace(row.Manufacturer)
		e.Model = strings.TrimSpace(row.Model)
		e.Range = strings.TrimSpace(row.Range)
		e.UOM = strings.TrimSpace(row.UOM)
		if imageURL != nil {
			e.ImageURL = *imageURL
		}
		if dueDate != nil {
			e.CalibrationDueDate = *dueDate
		}
		e.Touch(s.clock.Now())

		if created {
			return s.equipmentRepo.CreateEquipment(ctx, e)
		}
		return s.equipmentRepo.UpdateEquipment(ctx, e)
	})
	return created, err
}

func (s *EquipmentService) ensureGageIDFree(ctx context.Context, e *entities.Equipment) error {
	existing, err := s.equipmentRepo.FindEquipmentByGageID(ctx, e.GageID)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != e.ID:
		return apperrors.NewUniquenessError("gageId %q is already in use", e.GageID)
	}
	return nil
}

func applyEquipmentFields(e *entities.Equipment, data dto.UpdateEquipmentDTO) error {
	due := types.NullDate{}
	if data.CalibrationDueDate.Valid {
		parsed, err := types.ParseNullDate(data.CalibrationDueDate.String)
		if err != nil {
			return apperrors.NewFieldValidationError(map[string]string{"calibrationDueDate": "must be a date in 2006-01-02 format"})
		}
		due = parsed
	}
	imageURL := null.String{}
	if data.ImageURL.Valid && strings.TrimSpace(data.ImageURL.String) != "" {
		imageURL = null.StringFrom(strings.TrimSpace(data.ImageURL.String))
	}

	e.GageID = strings.TrimSpace(data.GageID)
	e.Description = strings.TrimSpace(data.Description)
	e.Manufacturer = strings.TrimSpace(data.Manufacturer)
	e.Model = strings.TrimSpace(data.Model)
	e.Range = strings.TrimSpace(data.Range)
	e.UOM = strings.TrimSpace(data.UOM)
	e.ImageURL = imageURL
	e.CalibrationDueDate = due
	return nil
}

// optionalURL treats blank as absent and rejects anything that is not an
// absolute URL.
func optionalURL(raw string) (null.String, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return null.String{}, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return null.String{}, apperrors.NewValidationError("imageUrl %q is not a valid URL", raw)
	}
	return null.StringFrom(raw), nil
}

func rowError(row int, data map[string]string, message string) dto.RowError {
	return dto.RowError{Row: row, RowData: data, Message: message}
}
