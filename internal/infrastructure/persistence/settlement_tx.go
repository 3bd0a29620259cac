package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
	"bullion_market/pkg/errcodes"
)

var _ repository.Transactor = (*Transactor)(nil)

type Transactor struct {
	db *sqlx.DB
}

func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinSettlement(ctx context.Context, fn func(ctx context.Context, tx repository.SettlementTx) error) error {
	return withTx(ctx, t.db, func(tx *sqlx.Tx) error {
		return fn(ctx, &settlementTx{tx: tx})
	})
}

type settlementTx struct {
	tx *sqlx.Tx
}

func (s *settlementTx) DealForUpdate(ctx context.Context, id int64) (*entity.Deal, error) {
	var schema dealSchema

	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1 FOR UPDATE`
	if err := s.tx.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewErrorf(domain.KindNotFound, errcodes.DealNotFound, "deal %d not found", id)
		}
		return nil, internal(err, "failed to lock deal")
	}

	return schema.toDomain(), nil
}

func (s *settlementTx) BuyerForUpdate(ctx context.Context, id int64) (*entity.Buyer, error) {
	var schema buyerSchema

	query := `SELECT ` + buyerColumns + ` FROM buyers WHERE id = $1 FOR UPDATE`
	if err := s.tx.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewErrorf(domain.KindNotFound, errcodes.BuyerNotFound, "buyer %d not found", id)
		}
		return nil, internal(err, "failed to lock buyer")
	}

	return schema.toDomain(), nil
}

func (s *settlementTx) SetBalance(ctx context.Context, buyerID int64, balance decimal.Decimal) error {
	res, err := s.tx.ExecContext(ctx,
		`UPDATE buyers SET balance = $1, updated_at = now() WHERE id = $2`, balance, buyerID)
	if err != nil {
		return internal(err, "failed to update balance")
	}

	return rowsAffected(res, func() error {
		return domain.NewErrorf(domain.KindNotFound, errcodes.BuyerNotFound, "buyer %d not found", buyerID)
	})
}

func (s *settlementTx) CreatePurchase(ctx context.Context, purchase *entity.Purchase) error {
	return createPurchase(ctx, s.tx, purchase)
}

// SaveInventory записывает остаток и статус заблокированного лота.
func (s *settlementTx) SaveInventory(ctx context.Context, deal *entity.Deal) error {
	query := `
		UPDATE deals
		SET available_quantity = $1, status = $2, owner_id = $3, updated_at = $4
		WHERE id = $5`

	res, err := s.tx.ExecContext(ctx, query,
		deal.AvailableQuantity, string(deal.Status), nullInt64(deal.OwnerID), deal.UpdatedAt, deal.ID)
	if err != nil {
		return internal(err, "failed to update inventory")
	}

	return rowsAffected(res, func() error {
		return domain.NewErrorf(domain.KindNotFound, errcodes.DealNotFound, "deal %d not found", deal.ID)
	})
}
