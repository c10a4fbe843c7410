package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reservation-system/internal/entities"
	apperrors "reservation-system/pkg/errors"
)

const (
	companyTable  = "companies"
	companyFields = "id, name, created_at, updated_at"
)

type CompanyRepositoryInterface interface {
	GetCompanies(ctx context.Context) ([]entities.Company, error)
	FindCompany(ctx context.Context, id string) (*entities.Company, error)
	FindCompanyByName(ctx context.Context, name string) (*entities.Company, error)
	CreateCompany(ctx context.Context, company *entities.Company) error
	UpdateCompany(ctx context.Context, company *entities.Company) error
	DeleteCompany(ctx context.Context, id string) error
}

type CompanyRepository struct {
	storage *pgxpool.Pool
}

func NewCompanyRepository(storage *pgxpool.Pool) CompanyRepositoryInterface {
	return &CompanyRepository{storage: storage}
}

func scanCompany(row pgx.Row) (*entities.Company, error) {
	var c entities.Company
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapPgError(err, nil)
	}
	return &c, nil
}

func (r *CompanyRepository) GetCompanies(ctx context.Context) ([]entities.Company, error) {
	query, args, err := psql.Select(companyFields).From(companyTable).OrderBy("lower(name)").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := conn(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	companies := make([]entities.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, rows.Err()
}

func (r *CompanyRepository) FindCompany(ctx context.Context, id string) (*entities.Company, error) {
	query, args, err := psql.Select(companyFields).From(companyTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanCompany(conn(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *CompanyRepository) FindCompanyByName(ctx context.Context, name string) (*entities.Company, error) {
	query, args, err := psql.Select(companyFields).From(companyTable).
		Where(sq.Expr("lower(name) = lower(?)", name)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanCompany(conn(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *CompanyRepository) CreateCompany(ctx context.Context, company *entities.Company) error {
	query, args, err := psql.Insert(companyTable).
		Columns("id", "name", "created_at", "updated_at").
		Values(company.ID, company.Name, company.CreatedAt, company.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = conn(ctx, r.storage).Exec(ctx, query, args...)
	return mapPgError(err, nil)
}

func (r *CompanyRepository) UpdateCompany(ctx context.Context, company *entities.Company) error {
	query, args, err := psql.Update(companyTable).
		Set("name", company.Name).
		Set("updated_at", company.UpdatedAt).
		Where(sq.Eq{"id": company.ID}).
		ToSql()
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, conn(ctx, r.storage), query, args, nil)
}

func (r *CompanyRepository) DeleteCompany(ctx context.Context, id string) error {
	query, args, err := psql.Delete(companyTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, conn(ctx, r.storage), query, args, apperrors.ErrReferenced)
}
