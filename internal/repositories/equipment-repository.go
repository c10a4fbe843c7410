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
	equipmentTable  = "equipment"
	equipmentFields = "id, gage_id, description, manufacturer, model, measurement_range, uom, image_url, calibration_due_date, created_at, updated_at"
)

type EquipmentRepositoryInterface interface {
	GetEquipments(ctx context.Context) ([]entities.Equipment, error)
	FindEquipment(ctx context.Context, id string) (*entities.Equipment, error)
	FindEquipmentByGageID(ctx context.Context, gageID string) (*entities.Equipment, error)
	CreateEquipment(ctx context.Context, equipment *entities.Equipment) error
	UpdateEquipment(ctx context.Context, equipment *entities.Equipment) error
	DeleteEquipment(ctx context.Context, id string) error
	// LockEquipment serializes writers per equipment until the surrounding
	// transaction ends. Missing ids yield ErrNotFound.
	LockEquipment(ctx context.Context, ids ...string) error
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage}
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	err := row.Scan(
		&e.ID,
		&e.GageID,
		&e.Description,
		&e.Manufacturer,
		&e.Model,
		&e.Range,
		&e.UOM,
		&e.ImageURL,
		&e.CalibrationDueDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, mapPgError(err, nil)
	}
	return &e, nil
}

func (r *EquipmentRepository) GetEquipments(ctx context.Context) ([]entities.Equipment, error) {
	query, args, err := psql.Select(equipmentFields).From(equipmentTable).OrderBy("lower(gage_id)").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := conn(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query equipment: %w", err)
	}
	defer rows.Close()

	list := make([]entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id string) (*entities.Equipment, error) {
	query, args, err := psql.Select(equipmentFields).From(equipmentTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanEquipment(conn(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *EquipmentRepository) FindEquipmentByGageID(ctx context.Context, gageID string) (*entities.Equipment, error) {
	query, args, err := psql.Select(equipmentFields).From(equipmentTable).
		Where(sq.Expr("lower(gage_id) = lower(?)", gageID)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanEquipment(conn(ctx, r.storage).QueryRow(ctx, query, args...))
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, e *entities.Equipment) error {
	query, args, err := psql.Insert(equipmentTable).
		Columns("id", "gage_id", "description", "manufacturer", "model", "measurement_range", "uom", "image_url", "calibration_due_date", "created_at", "updated_at").
		Values(e.ID, e.GageID, e.Description, e.Manufacturer, e.Model, e.Range, e.UOM, e.ImageURL, e.CalibrationDueDate, e.CreatedAt, e.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = conn(ctx, r.storage).Exec(ctx, query, args...)
	return mapPgError(err, nil)
}

func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, e *entities.Equipment) error {
	query, args, err := psql.Update(equipmentTable).
		SetMap(map[string]interface{}{
			"gage_id":              e.GageID,
			"description":          e.Description,
			"manufacturer":         e.Manufacturer,
			"model":                e.Model,
			"measurement_range":    e.Range,
			"uom":                  e.UOM,
			"image_url":            e.ImageURL,
			"calibration_due_date": e.CalibrationDueDate,
			"updated_at":           e.UpdatedAt,
		}).
		Where(sq.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, conn(ctx, r.storage), query, args, nil)
}

// DeleteEquipment relies on ON DELETE CASCADE for reservations.
func (r *EquipmentRepository) DeleteEquipment(ctx context.Context, id string) error {
	query, args, err := psql.Delete(equipmentTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	return execAffectingOne(ctx, conn(ctx, r.storage), query, args, apperrors.ErrReferenced)
}

func (r *EquipmentRepository) LockEquipment(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := psql.Select("id").From(equipmentTable).
		Where(sq.Eq{"id": ids}).
		OrderBy("id").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return err
	}
	rows, err := conn(ctx, r.storage).Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("lock equipment: %w", err)
	}
	defer rows.Close()

	locked := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		locked[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return fmt.Errorf("%w: equipment %s", apperrors.ErrNotFound, id)
		}
	}
	return nil
}
