package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "reservation-system/pkg/errors"
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// conn returns the transaction bound to ctx, or the pool.
func conn(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// mapPgError translates constraint violations into domain sentinels.
// fkKind decides what a foreign key violation means for the caller:
// a dangling reference on insert, or a guarded delete.
func mapPgError(err error, fkKind error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: %s", apperrors.ErrUniqueness, pgErr.ConstraintName)
	case "23P01":
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.ConstraintName)
	case "23503":
		if fkKind == nil {
			fkKind = apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: %s", fkKind, pgErr.ConstraintName)
	case "23514":
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, pgErr.ConstraintName)
	}
	return err
}

func execAffectingOne(ctx context.Context, q querier, query string, args []interface{}, fkKind error) error {
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err, fkKind)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
