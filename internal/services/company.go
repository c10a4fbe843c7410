package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"reservation-system/internal/dto"
	"reservation-system/internal/entities"
	"reservation-system/internal/repositories"
	apperrors "reservation-system/pkg/errors"
)

type CompanyServiceInterface interface {
	GetCompanies(ctx context.Context) ([]entities.Company, error)
	FindCompany(ctx context.Context, id string) (*entities.Company, error)
	CreateCompany(ctx context.Context, data dto.CreateCompanyDTO) (*entities.Company, error)
	UpdateCompany(ctx context.Context, id string, data dto.UpdateCompanyDTO) (*entities.Company, error)
	DeleteCompany(ctx context.Context, id string) error
	BulkUpsertCompanies(ctx context.Context, rows []dto.CompanyImportRow) (*dto.BulkUpsertResultDTO, error)
}

type CompanyService struct {
	txManager       repositories.TxManagerInterface
	companyRepo     repositories.CompanyRepositoryInterface
	reservationRepo repositories.ReservationRepositoryInterface
	clock           clockwork.Clock
	logger          *zap.Logger
}

func NewCompanyService(
	txManager repositories.TxManagerInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	reservationRepo repositories.ReservationRepositoryInterface,
	clock clockwork.Clock,
	logger *zap.Logger,
) CompanyServiceInterface {
	return &CompanyService{
		txManager:       txManager,
		companyRepo:     companyRepo,
		reservationRepo: reservationRepo,
		clock:           clock,
		logger:          logger,
	}
}

func (s *CompanyService) GetCompanies(ctx context.Context) ([]entities.Company, error) {
	return s.companyRepo.GetCompanies(ctx)
}

func (s *CompanyService) FindCompany(ctx context.Context, id string) (*entities.Company, error) {
	c, err := s.companyRepo.FindCompany(ctx, id)
	if err != nil {
		return nil, notFound(err, "company %s not found", id)
	}
	return c, nil
}

func (s *CompanyService) CreateCompany(ctx context.Context, data dto.CreateCompanyDTO) (*entities.Company, error) {
	if err := validate.Validate(data); err != nil {
		return nil, err
	}
	c := &entities.Company{ID: uuid.NewString(), Name: strings.TrimSpace(data.Name)}
	c.Touch(s.clock.Now())

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureNameFree(ctx, c); err != nil {
			return err
		}
		return s.companyRepo.CreateCompany(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CompanyService) UpdateCompany(ctx context.Context, id string, data dto.UpdateCompanyDTO) (*entities.Company, error) {
	if err := validate.Validate(data); err != nil {
		return nil, err
	}

	var updated *entities.Company
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.companyRepo.FindCompany(ctx, id)
		if err != nil {
			return notFound(err, "company %s not found", id)
		}
		c.Name = strings.TrimSpace(data.Name)
		if err := s.ensureNameFree(ctx, c); err != nil {
			return err
		}
		c.Touch(s.clock.Now())
		if err := s.companyRepo.UpdateCompany(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCompany refuses while any reservation still bills the company.
func (s *CompanyService) DeleteCompany(ctx context.Context, id string) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.companyRepo.FindCompany(ctx, id); err != nil {
			return notFound(err, "company %s not found", id)
		}
		n, err := s.reservationRepo.CountReservations(ctx, repositories.ReservationFilter{CompanyID: id})
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.NewReferencedError("company is referenced by %d reservation(s)", n)
		}
		return s.companyRepo.DeleteCompany(ctx, id)
	})
}

// BulkUpsertCompanies matches rows on case-insensitive name. A matched row
// counts as updated even though name is the only field.
func (s *CompanyService) BulkUpsertCompanies(ctx context.Context, rows []dto.CompanyImportRow) (*dto.BulkUpsertResultDTO, error) {
	result := &dto.BulkUpsertResultDTO{Errors: []dto.RowError{}}
	seen := make(map[string]int, len(rows))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := strings.TrimSpace(row.Name)
		if name == "" {
			result.Errors = append(result.Errors, rowError(row.Row, row.RowData, "name is required"))
			continue
		}
		key := entities.NormalizeKey(name)
		if first, dup := seen[key]; dup {
			result.Errors = append(result.Errors, rowError(row.Row, row.RowData,
				fmt.Sprintf("company %q repeats row %d", name, first)))
			continue
		}
		seen[key] = row.Row

		created := false
		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			c, err := s.companyRepo.FindCompanyByName(ctx, name)
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				created = true
				c = &entities.Company{ID: uuid.NewString(), Name: name}
				c.Touch(s.clock.Now())
				return s.companyRepo.CreateCompany(ctx, c)
			case err != nil:
				return err
			}
			c.Name = name
			c.Touch(s.clock.Now())
			return s.companyRepo.UpdateCompany(ctx, c)
		})
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

	s.logger.Info("company import finished",
		zap.Int("created", result.CreatedCount),
		zap.Int("updated", result.UpdatedCount),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (s *CompanyService) ensureNameFree(ctx context.Context, c *entities.Company) error {
	existing, err := s.companyRepo.FindCompanyByName(ctx, c.Name)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != c.ID:
		return apperrors.NewUniquenessError("company %q already exists", c.Name)
	}
	return nil
}
