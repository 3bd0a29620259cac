// Package persistence репозитории Postgres поверх sqlx.
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"bullion_market/internal/domain"
	"bullion_market/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const uniqueViolation = "23505"

// withTx выполняет функцию в транзакции.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, domain.KindInternal, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				domain.KindInternal,
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, domain.KindInternal, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

func internal(err error, msg string) error {
	return domain.WrapError(err, domain.KindInternal, errcodes.InternalServerError, msg)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// rowsAffected 0 строк трактуется как отсутствие записи.
func rowsAffected(res interface{ RowsAffected() (int64, error) }, notFound func() error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return internal(err, "failed to check affected rows")
	}

	if rows == 0 {
		return notFound()
	}

	return nil
}
