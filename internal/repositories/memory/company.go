package memory

import (
	"context"
	"slices"
	"strings"

	"reservation-system/internal/entities"
	"reservation-system/internal/repositories"
	apperrors "reservation-system/pkg/errors"
)

type CompanyRepository struct {
	store *Store
}

func NewCompanyRepository(store *Store) repositories.CompanyRepositoryInterface {
	return &CompanyRepository{store: store}
}

func (r *CompanyRepository) GetCompanies(ctx context.Context) ([]entities.Company, error) {
	var out []entities.Company
	err := r.store.read(ctx, func(st *state) error {
		out = make([]entities.Company, 0, len(st.companyOrder))
		for _, id := range st.companyOrder {
			out = append(out, st.companies[id])
		}
		return nil
	})
	slices.SortStableFunc(out, func(a, b entities.Company) int {
		return strings.Compare(a.NormalizedName(), b.NormalizedName())
	})
	return out, err
}

func (r *CompanyRepository) FindCompany(ctx context.Context, id string) (*entities.Company, error) {
	var out *entities.Company
	err := r.store.read(ctx, func(st *state) error {
		c, ok := st.companies[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *CompanyRepository) FindCompanyByName(ctx context.Context, name string) (*entities.Company, error) {
	key := entities.NormalizeKey(name)
	var out *entities.Company
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range st.companyOrder {
			c := st.companies[id]
			if c.NormalizedName() == key {
				out = &c
				return nil
			}
		}
		return apperrors.ErrNotFound
	})
	return out, err
}

func companyNameTaken(st *state, company *entities.Company) bool {
	key := company.NormalizedName()
	for id, other := range st.companies {
		if id != company.ID && other.NormalizedName() == key {
			return true
		}
	}
	return false
}

func (r *CompanyRepository) CreateCompany(ctx context.Context, company *entities.Company) error {
	return r.store.write(ctx, func(st *state) error {
		if _, exists := st.companies[company.ID]; exists || companyNameTaken(st, company) {
			return apperrors.ErrUniqueness
		}
		st.companies[company.ID] = *company
		st.companyOrder = append(st.companyOrder, company.ID)
		return nil
	})
}

func (r *CompanyRepository) UpdateCompany(ctx context.Context, company *entities.Company) error {
	return r.store.write(ctx, func(st *state) error {
		current, ok := st.companies[company.ID]
		if !ok {
			return apperrors.ErrNotFound
		}
		if companyNameTaken(st, company) {
			return apperrors.ErrUniqueness
		}
		updated := *company
		updated.CreatedAt = current.CreatedAt
		st.companies[company.ID] = updated
		return nil
	})
}

func (r *CompanyRepository) DeleteCompany(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.companies[id]; !ok {
			return apperrors.ErrNotFound
		}
		for _, res := range st.reservations {
			if res.CompanyID == id {
				return apperrors.ErrReferenced
			}
		}
		delete(st.companies, id)
		st.companyOrder = removeID(st.companyOrder, id)
		return nil
	})
}
