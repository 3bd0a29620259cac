package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
	"bullion_market/pkg/errcodes"
)

var _ repository.DealRepository = (*DealRepository)(nil)

type DealRepository struct {
	db *sqlx.DB
}

func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

// Create сохраняет новый лот и проставляет ему идентификатор.
func (r *DealRepository) Create(ctx context.Context, deal *entity.Deal) error {
	query := `
		INSERT INTO deals (external_id, commodity, company, grade, form, quantity, available_quantity,
			purity, adjustment, pricing_mode, unit_price, delivery_terms, origin, destination,
			transport_method, frequency, period_quantity, total_contract_quantity, status, owner_id,
			created_at, updated_at)
		VALUES (:external_id, :commodity, :company, :grade, :form, :quantity, :available_quantity,
			:purity, :adjustment, :pricing_mode, :unit_price, :delivery_terms, :origin, :destination,
			:transport_method, :frequency, :period_quantity, :total_contract_quantity, :status, :owner_id,
			:created_at, :updated_at)
		RETURNING id`

	rows, err := r.db.NamedQueryContext(ctx, query, fromDeal(deal))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewErrorf(domain.KindConflict, errcodes.AlreadyExists,
				"deal with external id %q already exists", deal.ExternalID)
		}
		return internal(err, "failed to insert deal")
	}
	defer rows.Close()

	if !rows.Next() {
		return internal(rows.Err(), "failed to read deal id")
	}

	if err := rows.Scan(&deal.ID); err != nil {
		return internal(err, "failed to scan deal id")
	}

	return nil
}

// GetByID возвращает лот по идентификатору.
func (r *DealRepository) GetByID(ctx context.Context, id int64) (*entity.Deal, error) {
	return r.get(ctx, r.db, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id)
}

func (r *DealRepository) GetByExternalID(ctx context.Context, externalID string) (*entity.Deal, error) {
	return r.get(ctx, r.db, `SELECT `+dealColumns+` FROM deals WHERE external_id = $1`, externalID)
}

func (r *DealRepository) get(ctx context.Context, q sqlx.QueryerContext, query string, arg any) (*entity.Deal, error) {
	var schema dealSchema
	if err := sqlx.GetContext(ctx, q, &schema, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewErrorf(domain.KindNotFound, errcodes.DealNotFound, "deal %v not found", arg)
		}
		return nil, internal(err, "failed to get deal")
	}

	return schema.toDomain(), nil
}

// UpdateCommercial обновляет коммерческие поля; количество, остаток и статус не трогает.
func (r *DealRepository) UpdateCommercial(ctx context.Context, deal *entity.Deal) error {
	query := `
		UPDATE deals SET
			commodity = :commodity, company = :company, grade = :grade, form = :form,
			purity = :purity, adjustment = :adjustment, pricing_mode = :pricing_mode,
			unit_price = :unit_price, delivery_terms = :delivery_terms, origin = :origin,
			destination = :destination, transport_method = :transport_method,
			frequency = :frequency, period_quantity = :period_quantity,
			total_contract_quantity = :total_contract_quantity, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, fromDeal(deal))
	if err != nil {
		return internal(err, "failed to update deal")
	}

	return rowsAffected(res, func() error {
		return domain.NewErrorf(domain.KindNotFound, errcodes.DealNotFound, "deal %d not found", deal.ID)
	})
}

func (r *DealRepository) ListOpen(ctx context.Context, limit, offset int) ([]entity.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE status = 'OPEN' ORDER BY id LIMIT $1 OFFSET $2`

	var schemas []dealSchema
	if err := r.db.SelectContext(ctx, &schemas, query, limit, offset); err != nil {
		return nil, internal(err, "failed to list deals")
	}

	deals := make([]entity.Deal, 0, len(schemas))
	for i := range schemas {
		deals = append(deals, *schemas[i].toDomain())
	}

	return deals, nil
}
