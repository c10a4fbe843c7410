package services

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/jonboulle/clockwork"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"reservation-system/internal/dto"
	"reservation-system/internal/events"
	"reservation-system/internal/repositories"
	apperrors "reservation-system/pkg/errors"
	"reservation-system/pkg/eventbus"
	"reservation-system/pkg/types"
	"reservation-system/pkg/utils"
)

type StagingServiceInterface interface {
	GetStagingList(ctx context.Context, date types.Date, technicianID string) (*dto.StagingListDTO, error)
	SetStaged(ctx context.Context, reservationID string, staged bool) error
	BuildStagingWorkbook(list *dto.StagingListDTO) (*excelize.File, error)
}

type StagingService struct {
	reservationRepo repositories.ReservationRepositoryInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	companyRepo     repositories.CompanyRepositoryInterface
	bus             *eventbus.Bus
	clock           clockwork.Clock
	logger          *zap.Logger
}

func NewStagingService(
	reservationRepo repositories.ReservationRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	bus *eventbus.Bus,
	clock clockwork.Clock,
	logger *zap.Logger,
) StagingServiceInterface {
	return &StagingService{
		reservationRepo: reservationRepo,
		equipmentRepo:   equipmentRepo,
		userRepo:        userRepo,
		companyRepo:     companyRepo,
		bus:             bus,
		clock:           clock,
		logger:          logger,
	}
}

// GetStagingList lists reservations picked up exactly on date, joined with
// their equipment, technician and company, sorted by technician name.
// Rows whose joined records are gone are skipped.
func (s *StagingService) GetStagingList(ctx context.Context, date types.Date, technicianID string) (*dto.StagingListDTO, error) {
	reservations, err := s.reservationRepo.GetReservations(ctx, repositories.ReservationFilter{
		PickupDate:   &date,
		TechnicianID: technicianID,
	})
	if err != nil {
		return nil, err
	}

	items := make([]dto.StagingItemDTO, 0, len(reservations))
	for _, r := range reservations {
		equipment, err := s.equipmentRepo.FindEquipment(ctx, r.EquipmentID)
		if err != nil {
			if skipMissing(s.logger, "equipment", r.ID, err) {
				continue
			}
			return nil, err
		}
		technician, err := s.userRepo.FindUser(ctx, r.TechnicianID)
		if err != nil {
			if skipMissing(s.logger, "technician", r.ID, err) {
				continue
			}
			return nil, err
		}
		company, err := s.companyRepo.FindCompany(ctx, r.CompanyID)
		if err != nil {
			if skipMissing(s.logger, "company", r.ID, err) {
				continue
			}
			return nil, err
		}
		items = append(items, dto.StagingItemDTO{
			ReservationID: r.ID,
			Staged:        r.Staged,
			PickupDate:    r.PickupDate,
			ReturnDate:    r.ReturnDate,
			Notes:         r.Notes,
			Equipment:     *equipment,
			Technician: dto.TechnicianRefDTO{
				ID:           technician.ID,
				Name:         technician.Name,
				DisplayColor: ResolveDisplayColor(technician),
			},
			Company: *company,
		})
	}

	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		return col.CompareString(items[i].Technician.Name, items[j].Technician.Name) < 0
	})

	return &dto.StagingListDTO{
		Date:  date,
		Items: items,
		Stats: stagingStats(items),
	}, nil
}

// skipMissing reports whether a failed join lookup means the record is gone.
// Any other failure aborts the listing.
func skipMissing(logger *zap.Logger, what, reservationID string, err error) bool {
	if errors.Is(err, apperrors.ErrNotFound) {
		logger.Warn("staging: "+what+" missing", zap.String("reservationID", reservationID))
		return true
	}
	logger.Error("staging: "+what+" lookup failed", zap.String("reservationID", reservationID), zap.Error(err))
	return false
}

func stagingStats(items []dto.StagingItemDTO) dto.StagingStatsDTO {
	stats := dto.StagingStatsDTO{TotalCount: len(items)}
	for _, it := range items {
		if it.Staged {
			stats.StagedCount++
		}
	}
	if stats.TotalCount > 0 {
		pct := float64(stats.StagedCount) / float64(stats.TotalCount) * 100
		stats.Percent = math.Round(pct*100) / 100
	}
	return stats
}

// SetStaged changes only the staged flag.
func (s *StagingService) SetStaged(ctx context.Context, reservationID string, staged bool) error {
	if err := s.reservationRepo.SetStaged(ctx, reservationID, staged, s.clock.Now()); err != nil {
		return notFound(err, "reservation %s not found", reservationID)
	}
	s.bus.Publish(ctx, events.ReservationStagedEvent{
		ReservationID: reservationID,
		Staged:        staged,
		ActorID:       utils.ActorFromCtx(ctx),
	})
	return nil
}

var stagingHeaders = []interface{}{
	"Staged", "Gage ID", "Description", "Manufacturer", "Model", "Technician", "Company", "Pickup", "Return", "Notes",
}

// BuildStagingWorkbook renders the list as a printable checklist.
func (s *StagingService) BuildStagingWorkbook(list *dto.StagingListDTO) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Staging " + list.Date.String()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &stagingHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "J1", style); err != nil {
		return nil, err
	}

	for i, it := range list.Items {
		mark := ""
		if it.Staged {
			mark = "x"
		}
		row := []interface{}{
			mark,
			it.Equipment.GageID,
			it.Equipment.Description,
			it.Equipment.Manufacturer,
			it.Equipment.Model,
			it.Technician.Name,
			it.Company.Name,
			it.PickupDate.String(),
			it.ReturnDate.String(),
			it.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	summary, err := excelize.CoordinatesToCellName(1, len(list.Items)+3)
	if err != nil {
		return nil, err
	}
	totals := []interface{}{"Progress", list.Stats.StagedCount, list.Stats.TotalCount, list.Stats.Percent}
	if err := f.SetSheetRow(sheet, summary, &totals); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(sheet, "B", "B", 15)
	_ = f.SetColWidth(sheet, "C", "C", 40)
	_ = f.SetColWidth(sheet, "D", "G", 20)
	_ = f.SetColWidth(sheet, "J", "J", 50)
	return f, nil
}
