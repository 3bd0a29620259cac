package memory

import (
	"context"
	"sort"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
	"bullion_market/internal/domain/value"
	"bullion_market/pkg/errcodes"
)

var _ repository.ExportRepository = (*ExportRepository)(nil)

type ExportRepository struct {
	s *Store
}

func (r *ExportRepository) Create(_ context.Context, export *entity.PendingExport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.exports {
		if e.PurchaseID == export.PurchaseID {
			return domain.NewErrorf(domain.KindConflict, errcodes.AlreadyExists,
				"export for purchase %d already exists", export.PurchaseID)
		}
	}

	export.ID = r.s.nextID()
	r.s.exports[export.ID] = *export

	return nil
}

func (r *ExportRepository) GetByID(_ context.Context, id int64) (*entity.PendingExport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	export, ok := r.s.exports[id]
	if !ok {
		return nil, exportNotFound(id)
	}

	return &export, nil
}

func (r *ExportRepository) GetByPurchaseID(_ context.Context, purchaseID int64) (*entity.PendingExport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range r.s.exports {
		if e.PurchaseID == purchaseID {
			return &e, nil
		}
	}

	return nil, domain.NewErrorf(domain.KindNotFound, errcodes.ExportNotFound,
		"export for purchase %d not found", purchaseID)
}

func (r *ExportRepository) List(_ context.Context, status value.ExportStatus, limit, offset int) ([]entity.PendingExport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	exports := make([]entity.PendingExport, 0, len(r.s.exports))
	for _, e := range r.s.exports {
		if status == "" || e.Status == status {
			exports = append(exports, e)
		}
	}

	sort.Slice(exports, func(i, j int) bool { return exports[i].ID < exports[j].ID })

	return page(exports, limit, offset), nil
}

func (r *ExportRepository) UpdateParams(_ context.Context, id int64, params entity.ExportParams) error {
	return r.updatePending(id, func(e *entity.PendingExport) {
		e.Params = params
	})
}

func (r *ExportRepository) MarkExported(_ context.Context, export *entity.PendingExport) error {
	return r.updatePending(export.ID, func(e *entity.PendingExport) {
		e.Status = value.ExportExported
		e.ExternalID = export.ExternalID
		e.ReviewedBy = export.ReviewedBy
		e.ReviewedAt = export.ReviewedAt
		e.UpdatedAt = export.UpdatedAt
	})
}

func (r *ExportRepository) MarkRejected(_ context.Context, export *entity.PendingExport) error {
	return r.updatePending(export.ID, func(e *entity.PendingExport) {
		e.Status = value.ExportRejected
		e.RejectionReason = export.RejectionReason
		e.ReviewedBy = export.ReviewedBy
		e.ReviewedAt = export.ReviewedAt
		e.UpdatedAt = export.UpdatedAt
	})
}

func (r *ExportRepository) updatePending(id int64, fn func(e *entity.PendingExport)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.exports[id]
	if !ok {
		return exportNotFound(id)
	}

	if !current.IsPending() {
		return alreadyProcessed(current)
	}

	fn(&current)
	r.s.exports[id] = current

	return nil
}
