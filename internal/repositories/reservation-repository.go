package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"reservation-system/internal/entities"
)

const (
	reservationTable  = "reservations"
	reservationFields = "id, equipment_id, technician_id, company_id, pickup_date, return_date, notes, staged, created_at, updated_at"
)

type ReservationRepositoryInterface interface {
	// GetReservations orders by pickup date, then creation.
	GetReservations(ctx context.Context, filter ReservationFilter) ([]entities.Reservation, error)
	CountReservations(ctx context.Context, filter ReservationFilter) (int, error)
	FindReservation(ctx context.Context, id string) (*entities.Reservation, error)
	CreateReservation(ctx context.Context, reservation *entities.Reservation) error
	UpdateReservation(ctx context.Context, reservation *entities.Reservation) error
	SetStaged(ctx context.Context, id string, staged bool, updatedAt time.Time) error
	DeleteReservation(ctx context.Context, id string) error
	DeleteReservationsByEquipment(ctx context.Context, equipmentID string) (int64, error)
}

type ReservationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewReservationRepository(storage *pgxpool.Pool, logger *zap.Logger) ReservationRepositoryInterface {
	return &ReservationRepository{storage: storage, logger: logger}
}

func scanReservation(row pgx.Row) (*entities.Reservation, error) {
	var res entities.Reservation
	err := row.Scan(
		&res.ID,
		&res.EquipmentID,
		&res.TechnicianID,
		&res.CompanyID,
		&res.PickupDate,
		&res.ReturnDate,
		&res.Notes,
		&res.Staged,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, mapPgError(err, nil)
	}
	return &res, nil
}

func applyReservationFilter(b sq.SelectBuilder, f ReservationFilter) sq.SelectBuilder {
	if f.EquipmentID != "" {
		b = b.Where(sq.Eq{"equipment_id": f.EquipmentID})
	}
	if f.TechnicianID != "" {
		b = b.Where(sq.Eq{"technician_id": f.TechnicianID})
	}
	if f.CompanyID != "" {
		b = b.Where(sq.Eq{"company_id": f.CompanyID})
	}
	if f.ExcludeID != "" {
		b = b.Where(sq.NotEq{"id": f.ExcludeID})
	}
	if f.PickupDate != nil {
		b = b.Where(sq.Eq{"pickup_date": *f.PickupDate})
	}
	if f.From != nil {
		b = b.Where(sq.GtOrEq{"return_date": *f.From})
	}
	if f.To != nil {
		b = b.Where(sq.LtOrEq{"pickup_date": *f.To})
	}
	if f.ReturnOnOrAfter != nil {
		b = b.Where(sq.GtOrEq{"return_date": *f.ReturnOnOrAfter})
	}
	return b
}

func (r *ReservationRepository) GetReservations(ctx context.Context, filter ReservationFilter) ([]entities.Reservation, error) {
	builder := applyReservationFilter(psql.Select(reservationFields).From(reservationTable), filter).
		OrderBy("pickup_date", "created_at", "id")
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("ReservationRepository.GetReservations: query failed", zap.String("sql", query), zap.Error(err))
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	list := make([]entities.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

func (r *ReservationRepository) CountReservations(ctx context.Context, filter ReservationFilter) (int, error) {
	query, args, err := applyReservationFilter(psql.Select("COUNT(*)").From(reservationTable), filter).ToSql()
	if err != nil {
		return 0, err
	}
	var total int
	if err := conn(ctx, r.storage).QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count reservations: %w", err)
	}
	return total, nil
}

func (r *ReservationRepository) FindReservation(ctx context.Context, id string) (*entities.Reservation, error) {
	query, args, err := psql.Select(reservationFields).From(reservationTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanReservation(conn(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *ReservationRepository) CreateReservation(ctx context.Context, res *entities.Reservation) error {
	query, args, err := psql.Insert(reservationTable).
		Columns("id", "equipment_id", "technician_id", "company_id", "pickup_date", "return_date", "notes", "staged", "created_at", "updated_at").
		Values(res.ID, res.EquipmentID, res.TechnicianID, res.CompanyID, res.PickupDate, res.ReturnDate, res.Notes, res.Staged, res.CreatedAt, res.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := conn(ctx, r.storage).Exec(ctx, query, args...); err != nil {
		return mapPgError(err, nil)
	}
	return nil
}

func (r *ReservationRepository) UpdateReservation(ctx context.Context, res *entities.Reservation) error {
	query, args, err := psql.Update(reservationTable).
		SetMap(map[string]interface{}{
			"equipment_id":  res.EquipmentID,
			"technician_id": res.TechnicianID,
			"company_id":    res.CompanyID,
			"pickup_date":   res.PickupDate,
			"return_date":   res.ReturnDate,
			"notes":         res.Notes,
			"staged":        res.Staged,
			"updated_at":    res.UpdatedAt,
		}).
		Where(sq.Eq{"id": res.ID}).
		ToSql()
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, conn(ctx, r.storage), query, args, nil)
}

func (r *ReservationRepository) SetStaged(ctx context.Context, id string, staged bool, updatedAt time.Time) error {
	query, args, err := psql.Update(reservationTable).
		Set("staged", staged).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, conn(ctx, r.storage), query, args, nil)
}

func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	query, args, err := psql.Delete(reservationTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, conn(ctx, r.storage), query, args, nil)
}

func (r *ReservationRepository) DeleteReservationsByEquipment(ctx context.Context, equipmentID string) (int64, error) {
	query, args, err := psql.Delete(reservationTable).Where(sq.Eq{"equipment_id": equipmentID}).ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := conn(ctx, r.storage).Exec(ctx, query, args...)
	if err != nil {
		return 0, mapPgError(err, nil)
	}
	return tag.RowsAffected(), nil
}
