package memory

import (
	"context"
	"sort"

	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
	"bullion_market/internal/domain/value"
)

var (
	_ repository.PurchaseRepository  = (*PurchaseRepository)(nil)
	_ repository.BuyerRepository     = (*BuyerRepository)(nil)
	_ repository.AgreementRepository = (*AgreementRepository)(nil)
)

type PurchaseRepository struct {
	s *Store
}

func (r *PurchaseRepository) Create(_ context.Context, purchase *entity.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.deals[purchase.DealID]; !ok {
		return dealNotFound(purchase.DealID)
	}

	purchase.ID = r.s.nextID()
	r.s.purchases[purchase.ID] = *purchase

	return nil
}

func (r *PurchaseRepository) GetByID(_ context.Context, id int64) (*entity.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	purchase, ok := r.s.purchases[id]
	if !ok {
		return nil, purchaseNotFound(id)
	}

	return &purchase, nil
}

func (r *PurchaseRepository) UpdateLogistics(
	_ context.Context, purchase *entity.Purchase, expected value.LogisticsStatus,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.purchases[purchase.ID]
	if !ok {
		return purchaseNotFound(purchase.ID)
	}

	if current.Status != expected {
		return logisticsConflict(purchase.ID, current.Status)
	}

	current.Status = purchase.Status
	current.Carrier = purchase.Carrier
	current.TrackingID = purchase.TrackingID
	current.ShippedAt = purchase.ShippedAt
	current.DeliveredAt = purchase.DeliveredAt
	current.UpdatedAt = purchase.UpdatedAt

	r.s.purchases[purchase.ID] = current

	return nil
}

func (r *PurchaseRepository) ListByBuyer(_ context.Context, buyerID int64, limit, offset int) ([]entity.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var purchases []entity.Purchase
	for _, p := range r.s.purchases {
		if p.BuyerID == buyerID {
			purchases = append(purchases, p)
		}
	}

	sort.Slice(purchases, func(i, j int) bool { return purchases[i].ID < purchases[j].ID })

	return page(purchases, limit, offset), nil
}

type BuyerRepository struct {
	s *Store
}

// Put создаёт или заменяет покупателя. Пополнение кошельков вне этого сервиса.
func (r *BuyerRepository) Put(buyer *entity.Buyer) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if buyer.ID == 0 {
		buyer.ID = r.s.nextID()
	} else if buyer.ID > r.s.seq {
		r.s.seq = buyer.ID
	}

	r.s.buyers[buyer.ID] = *buyer
}

func (r *BuyerRepository) GetByID(_ context.Context, id int64) (*entity.Buyer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	buyer, ok := r.s.buyers[id]
	if !ok {
		return nil, buyerNotFound(id)
	}

	return &buyer, nil
}

type AgreementRepository struct {
	s *Store
}

func (r *AgreementRepository) Create(_ context.Context, agreement *entity.Agreement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	agreement.ID = r.s.nextID()
	r.s.agreements[agreement.ID] = *agreement

	return nil
}

// List соглашения по покупке.
func (r *AgreementRepository) List(purchaseID int64) []entity.Agreement {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Agreement
	for _, a := range r.s.agreements {
		if a.PurchaseID == purchaseID {
			out = append(out, a)
		}
	}

	return out
}
