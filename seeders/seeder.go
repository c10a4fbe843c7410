package seeders

import (
	"context"
	"fmt"
	"strings"

	"github.com/aarondl/null/v8"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"reservation-system/internal/dto"
	"reservation-system/internal/services"
	"reservation-system/pkg/types"
)

// Seeder loads the demo data set through the services, so every row passes
// the same validation as an API request. Running it twice is safe: users
// are matched by name, the catalogue goes through the bulk upsert, and
// reservations are only added to an empty schedule.
type Seeder struct {
	reg    *services.Registry
	clock  clockwork.Clock
	logger *zap.Logger
}

func New(reg *services.Registry, clock clockwork.Clock, logger *zap.Logger) *Seeder {
	return &Seeder{reg: reg, clock: clock, logger: logger}
}

// Run seeds everything. adminSecret, when not empty, becomes the admin's
// credential.
func (s *Seeder) Run(ctx context.Context, adminSecret string) error {
	users, err := s.seedUsers(ctx, adminSecret)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	companies, err := s.seedCompanies(ctx)
	if err != nil {
		return fmt.Errorf("seed companies: %w", err)
	}
	equipment, err := s.seedEquipment(ctx)
	if err != nil {
		return fmt.Errorf("seed equipment: %w", err)
	}
	if err := s.seedReservations(ctx, users, companies, equipment); err != nil {
		return fmt.Errorf("seed reservations: %w", err)
	}
	s.logger.Info("seeding finished")
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, adminSecret string) (map[string]string, error) {
	existing, err := s.reg.Users.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(existing))
	for _, u := range existing {
		ids[u.Name] = u.ID
	}

	for _, u := range usersData {
		if _, ok := ids[u.Name]; ok {
			continue
		}
		payload := dto.CreateUserDTO{Name: u.Name, Role: string(u.Role)}
		if u.Email != "" {
			payload.Email = null.StringFrom(u.Email)
		}
		if u.Color != "" {
			payload.DisplayColor = null.StringFrom(u.Color)
		}
		created, err := s.reg.Users.CreateUser(ctx, payload)
		if err != nil {
			return nil, fmt.Errorf("user %q: %w", u.Name, err)
		}
		ids[u.Name] = created.ID
		s.logger.Info("user created", zap.String("name", u.Name), zap.String("role", string(u.Role)))
	}

	if adminSecret != "" {
		adminID := ids[usersData[0].Name]
		if err := s.reg.Users.SetCredential(ctx, adminID, dto.SetCredentialDTO{Secret: adminSecret}); err != nil {
			return nil, fmt.Errorf("admin credential: %w", err)
		}
		s.logger.Info("admin credential set", zap.String("userID", adminID))
	}
	return ids, nil
}

func (s *Seeder) seedCompanies(ctx context.Context) (map[string]string, error) {
	rows := make([]dto.CompanyImportRow, 0, len(companiesData))
	for i, name := range companiesData {
		rows = append(rows, dto.CompanyImportRow{Row: i + 1, Name: name})
	}
	res, err := s.reg.Companies.BulkUpsertCompanies(ctx, rows)
	if err != nil {
		return nil, err
	}
	s.logResult("companies", res)

	all, err := s.reg.Companies.GetCompanies(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(all))
	for _, c := range all {
		ids[c.Name] = c.ID
	}
	return ids, nil
}

func (s *Seeder) seedEquipment(ctx context.Context) (map[string]string, error) {
	rows := make([]dto.EquipmentImportRow, 0, len(equipmentData))
	for i, e := range equipmentData {
		row := dto.EquipmentImportRow{
			Row:          i + 1,
			GageID:       e.GageID,
			Description:  e.Description,
			Manufacturer: e.Manufacturer,
			Model:        e.Model,
			Range:        e.Range,
			UOM:          e.UOM,
		}
		if e.CalibrationDue != "" {
			due := e.CalibrationDue
			row.CalibrationDueDate = &due
		}
		rows = append(rows, row)
	}
	res, err := s.reg.Equipment.BulkUpsertEquipment(ctx, rows)
	if err != nil {
		return nil, err
	}
	s.logResult("equipment", res)

	all, err := s.reg.Equipment.GetEquipments(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(all))
	for _, e := range all {
		ids[strings.ToUpper(e.GageID)] = e.ID
	}
	return ids, nil
}

func (s *Seeder) seedReservations(ctx context.Context, users, companies, equipment map[string]string) error {
	existing, err := s.reg.Reservations.ListReservations(ctx, nil, nil)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Info("reservations already present, skipping", zap.Int("count", len(existing)))
		return nil
	}

	today := types.DateOf(s.clock.Now())
	for _, r := range reservationsData {
		equipmentIDs := make([]string, 0, len(r.GageIDs))
		for _, g := range r.GageIDs {
			equipmentIDs = append(equipmentIDs, equipment[strings.ToUpper(g)])
		}
		created, err := s.reg.Reservations.CreateBatchReservations(ctx, dto.CreateBatchReservationDTO{
			EquipmentIDs: equipmentIDs,
			TechnicianID: users[r.Technician],
			CompanyID:    companies[r.Company],
			PickupDate:   today.AddDays(r.PickupIn).String(),
			ReturnDate:   today.AddDays(r.ReturnIn).String(),
			Notes:        r.Notes,
		})
		if err != nil {
			s.logger.Warn("reservation skipped", zap.String("technician", r.Technician), zap.Strings("gageIds", r.GageIDs), zap.Error(err))
			continue
		}
		s.logger.Info("reservations created", zap.String("technician", r.Technician), zap.Int("count", len(created)))
	}
	return nil
}

func (s *Seeder) logResult(what string, res *dto.BulkUpsertResultDTO) {
	s.logger.Info(what+" upserted",
		zap.Int("created", res.CreatedCount),
		zap.Int("updated", res.UpdatedCount),
	)
	for _, e := range res.Errors {
		s.logger.Warn(what+" row rejected", zap.Int("row", e.Row), zap.String("reason", e.Message))
	}
}
