package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
	"bullion_market/internal/domain/value"
	"bullion_market/pkg/errcodes"
)

var (
	_ repository.PurchaseRepository  = (*PurchaseRepository)(nil)
	_ repository.BuyerRepository     = (*BuyerRepository)(nil)
	_ repository.AgreementRepository = (*AgreementRepository)(nil)
)

const insertPurchase = `
	INSERT INTO purchases (deal_id, buyer_id, quantity, unit_price, total_price, delivery_location,
		status, carrier, tracking_id, shipped_at, delivered_at, parent_id, created_at, updated_at)
	VALUES (:deal_id, :buyer_id, :quantity, :unit_price, :total_price, :delivery_location,
		:status, :carrier, :tracking_id, :shipped_at, :delivered_at, :parent_id, :created_at, :updated_at)
	RETURNING id`

type PurchaseRepository struct {
	db *sqlx.DB
}

func NewPurchaseRepository(db *sqlx.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(ctx context.Context, purchase *entity.Purchase) error {
	return createPurchase(ctx, r.db, purchase)
}

func createPurchase(ctx context.Context, q sqlx.ExtContext, purchase *entity.Purchase) error {
	query, args, err := q.BindNamed(insertPurchase, fromPurchase(purchase))
	if err != nil {
		return internal(err, "failed to bind purchase")
	}

	if err := sqlx.GetContext(ctx, q, &purchase.ID, query, args...); err != nil {
		return internal(err, "failed to insert purchase")
	}

	return nil
}

func (r *PurchaseRepository) GetByID(ctx context.Context, id int64) (*entity.Purchase, error) {
	var schema purchaseSchema

	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewErrorf(domain.KindNotFound, errcodes.PurchaseNotFound, "purchase %d not found", id)
		}
		return nil, internal(err, "failed to get purchase")
	}

	return schema.toDomain(), nil
}

// UpdateLogistics перезаписывает статус доставки и данные перевозчика
// при условии, что статус в базе равен expected.
func (r *PurchaseRepository) UpdateLogistics(
	ctx context.Context, purchase *entity.Purchase, expected value.LogisticsStatus,
) error {
	query := `
		UPDATE purchases SET
			status = $2, carrier = $3, tracking_id = $4,
			shipped_at = $5, delivered_at = $6, updated_at = $7
		WHERE id = $1 AND status = $8`

	res, err := r.db.ExecContext(ctx, query,
		purchase.ID, string(purchase.Status), purchase.Carrier, purchase.TrackingID,
		nullTime(purchase.ShippedAt), nullTime(purchase.DeliveredAt), purchase.UpdatedAt, string(expected),
	)
	if err != nil {
		return internal(err, "failed to update purchase")
	}

	return rowsAffected(res, func() error {
		current, err := r.GetByID(ctx, purchase.ID)
		if err != nil {
			return err
		}

		return domain.NewErrorf(domain.KindConflict, errcodes.LogisticsConflict,
			"purchase %d logistics changed concurrently, now %s", purchase.ID, current.Status)
	})
}

func (r *PurchaseRepository) ListByBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE buyer_id = $1 ORDER BY id LIMIT $2 OFFSET $3`

	var schemas []purchaseSchema
	if err := r.db.SelectContext(ctx, &schemas, query, buyerID, limit, offset); err != nil {
		return nil, internal(err, "failed to list purchases")
	}

	purchases := make([]entity.Purchase, 0, len(schemas))
	for i := range schemas {
		purchases = append(purchases, *schemas[i].toDomain())
	}

	return purchases, nil
}

type BuyerRepository struct {
	db *sqlx.DB
}

func NewBuyerRepository(db *sqlx.DB) *BuyerRepository {
	return &BuyerRepository{db: db}
}

func (r *BuyerRepository) GetByID(ctx context.Context, id int64) (*entity.Buyer, error) {
	var schema buyerSchema

	query := `SELECT ` + buyerColumns + ` FROM buyers WHERE id = $1`
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewErrorf(domain.KindNotFound, errcodes.BuyerNotFound, "buyer %d not found", id)
		}
		return nil, internal(err, "failed to get buyer")
	}

	return schema.toDomain(), nil
}

type AgreementRepository struct {
	db *sqlx.DB
}

func NewAgreementRepository(db *sqlx.DB) *AgreementRepository {
	return &AgreementRepository{db: db}
}

func (r *AgreementRepository) Create(ctx context.Context, agreement *entity.Agreement) error {
	query := `
		INSERT INTO agreements (deal_id, purchase_id, buyer_id, terms, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.db.GetContext(ctx, &agreement.ID, query,
		agreement.DealID, agreement.PurchaseID, agreement.BuyerID,
		agreement.Terms, string(agreement.Status), agreement.CreatedAt,
	)
	if err != nil {
		return internal(err, "failed to insert agreement")
	}

	return nil
}
