package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/zatekoja/clinic-site/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func updateOrderIndex(ctx context.Context, db *goqu.Database, tx *sqlx.Tx, table, what, id string, idx int, now time.Time) error {
	query, args, err := db.Update(table).
		Set(goqu.Record{"order_index": idx, "updated_at": now}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to reorder %s", what), err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s with id %s not found", what, id))
	}
	return nil
}

func deleteByID(ctx context.Context, db *goqu.Database, client *postgres.Client, table, what, id string) error {
	query, args, err := db.Delete(table).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to delete %s", what), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s with id %s not found", what, id))
	}
	return nil
}

// isUniqueViolation reports a Postgres unique_violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
