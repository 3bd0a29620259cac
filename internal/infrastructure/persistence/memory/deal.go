package memory

import (
	"context"
	"sort"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
	"bullion_market/pkg/errcodes"
)

var _ repository.DealRepository = (*DealRepository)(nil)

type DealRepository struct {
	s *Store
}

func (r *DealRepository) Create(_ context.Context, deal *entity.Deal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, d := range r.s.deals {
		if d.ExternalID == deal.ExternalID {
			return domain.NewErrorf(domain.KindConflict, errcodes.AlreadyExists,
				"deal with external id %q already exists", deal.ExternalID)
		}
	}

	deal.ID = r.s.nextID()
	r.s.deals[deal.ID] = *deal

	return nil
}

func (r *DealRepository) GetByID(_ context.Context, id int64) (*entity.Deal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deal, ok := r.s.deals[id]
	if !ok {
		return nil, dealNotFound(id)
	}

	return &deal, nil
}

func (r *DealRepository) GetByExternalID(_ context.Context, externalID string) (*entity.Deal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, d := range r.s.deals {
		if d.ExternalID == externalID {
			return &d, nil
		}
	}

	return nil, domain.NewErrorf(domain.KindNotFound, errcodes.DealNotFound,
		"deal with external id %q not found", externalID)
}

func (r *DealRepository) UpdateCommercial(_ context.Context, deal *entity.Deal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.deals[deal.ID]
	if !ok {
		return dealNotFound(deal.ID)
	}

	updated := *deal
	updated.ExternalID = current.ExternalID
	updated.Quantity = current.Quantity
	updated.AvailableQuantity = current.AvailableQuantity
	updated.Status = current.Status
	updated.OwnerID = current.OwnerID
	updated.CreatedAt = current.CreatedAt

	r.s.deals[deal.ID] = updated

	return nil
}

func (r *DealRepository) ListOpen(_ context.Context, limit, offset int) ([]entity.Deal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deals := make([]entity.Deal, 0, len(r.s.deals))
	for _, d := range r.s.deals {
		if d.IsOpen() {
			deals = append(deals, d)
		}
	}

	sort.Slice(deals, func(i, j int) bool { return deals[i].ID < deals[j].ID })

	return page(deals, limit, offset), nil
}
