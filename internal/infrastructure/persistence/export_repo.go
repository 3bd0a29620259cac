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

var _ repository.ExportRepository = (*ExportRepository)(nil)

type ExportRepository struct {
	db *sqlx.DB
}

func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

func (r *ExportRepository) Create(ctx context.Context, export *entity.PendingExport) error {
	params, err := json.Marshal(export.Params)
	if err != nil {
		return internal(err, "failed to marshal export params")
	}

	query := `
		INSERT INTO pending_exports (purchase_id, deal_id, params, idempotency_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err = r.db.GetContext(ctx, &export.ID, query,
		export.PurchaseID, export.DealID, params, export.IdempotencyKey,
		string(export.Status), export.CreatedAt, export.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewErrorf(domain.KindConflict, errcodes.AlreadyExists,
				"export for purchase %d already exists", export.PurchaseID)
		}
		return internal(err, "failed to insert export")
	}

	return nil
}

func (r *ExportRepository) GetByID(ctx context.Context, id int64) (*entity.PendingExport, error) {
	query := `SELECT ` + exportColumns + ` FROM pending_exports WHERE id = $1`

	export, err := r.get(ctx, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewErrorf(domain.KindNotFound, errcodes.ExportNotFound, "export %d not found", id)
	}

	return export, err
}

func (r *ExportRepository) GetByPurchaseID(ctx context.Context, purchaseID int64) (*entity.PendingExport, error) {
	query := `SELECT ` + exportColumns + ` FROM pending_exports WHERE purchase_id = $1`

	export, err := r.get(ctx, query, purchaseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewErrorf(domain.KindNotFound, errcodes.ExportNotFound,
			"export for purchase %d not found", purchaseID)
	}

	return export, err
}

func (r *ExportRepository) get(ctx context.Context, query string, arg int64) (*entity.PendingExport, error) {
	var schema exportSchema
	if err := r.db.GetContext(ctx, &schema, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, internal(err, "failed to get export")
	}

	export, err := schema.toDomain()
	if err != nil {
		return nil, internal(err, "failed to decode export params")
	}

	return export, nil
}

func (r *ExportRepository) List(ctx context.Context, status value.ExportStatus, limit, offset int) ([]entity.PendingExport, error) {
	query := `SELECT ` + exportColumns + ` FROM pending_exports
		WHERE ($1 = '' OR status = $1)
		ORDER BY id LIMIT $2 OFFSET $3`

	var schemas []exportSchema
	if err := r.db.SelectContext(ctx, &schemas, query, string(status), limit, offset); err != nil {
		return nil, internal(err, "failed to list exports")
	}

	exports := make([]entity.PendingExport, 0, len(schemas))
	for i := range schemas {
		export, err := schemas[i].toDomain()
		if err != nil {
			return nil, internal(err, "failed to decode export params")
		}
		exports = append(exports, *export)
	}

	return exports, nil
}

func (r *ExportRepository) UpdateParams(ctx context.Context, id int64, params entity.ExportParams) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return internal(err, "failed to marshal export params")
	}

	query := `UPDATE pending_exports SET params = $1, updated_at = now() WHERE id = $2 AND status = 'PENDING'`

	return r.updatePending(ctx, id, query, raw, id)
}

// MarkExported условный переход PENDING -> EXPORTED.
func (r *ExportRepository) MarkExported(ctx context.Context, export *entity.PendingExport) error {
	query := `
		UPDATE pending_exports
		SET status = 'EXPORTED', external_id = $1, reviewed_by = $2, reviewed_at = $3, updated_at = $4
		WHERE id = $5 AND status = 'PENDING'`

	return r.updatePending(ctx, export.ID, query,
		export.ExternalID, nullInt64(export.ReviewedBy), nullTime(export.ReviewedAt), export.UpdatedAt, export.ID)
}

// MarkRejected условный переход PENDING -> REJECTED.
func (r *ExportRepository) MarkRejected(ctx context.Context, export *entity.PendingExport) error {
	query := `
		UPDATE pending_exports
		SET status = 'REJECTED', rejection_reason = $1, reviewed_by = $2, reviewed_at = $3, updated_at = $4
		WHERE id = $5 AND status = 'PENDING'`

	return r.updatePending(ctx, export.ID, query,
		export.RejectionReason, nullInt64(export.ReviewedBy), nullTime(export.ReviewedAt), export.UpdatedAt, export.ID)
}

// updatePending 0 строк означает либо отсутствие записи, либо уже принятое решение.
func (r *ExportRepository) updatePending(ctx context.Context, id int64, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return internal(err, "failed to update export")
	}

	return rowsAffected(res, func() error {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}

		return domain.NewErrorf(domain.KindConflict, errcodes.AlreadyProcessed,
			"export %d is already %s", id, current.Status)
	})
}
