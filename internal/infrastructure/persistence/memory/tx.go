package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
)

// WithinSettlement держит мьютекс всего хранилища на время fn.
// Изменения копятся в отдельном наборе и применяются только при успехе.
func (s *Store) WithinSettlement(ctx context.Context, fn func(ctx context.Context, tx repository.SettlementTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &settlementTx{
		s:      s,
		deals:  make(map[int64]entity.Deal),
		buyers: make(map[int64]entity.Buyer),
		seq:    s.seq,
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	for id, d := range tx.deals {
		s.deals[id] = d
	}
	for id, b := range tx.buyers {
		s.buyers[id] = b
	}
	for _, p := range tx.purchases {
		s.purchases[p.ID] = p
	}
	s.seq = tx.seq

	return nil
}

type settlementTx struct {
	s *Store

	deals     map[int64]entity.Deal
	buyers    map[int64]entity.Buyer
	purchases []entity.Purchase
	seq       int64
}

func (t *settlementTx) DealForUpdate(_ context.Context, id int64) (*entity.Deal, error) {
	if d, ok := t.deals[id]; ok {
		return &d, nil
	}

	d, ok := t.s.deals[id]
	if !ok {
		return nil, dealNotFound(id)
	}

	return &d, nil
}

func (t *settlementTx) BuyerForUpdate(_ context.Context, id int64) (*entity.Buyer, error) {
	if b, ok := t.buyers[id]; ok {
		return &b, nil
	}

	b, ok := t.s.buyers[id]
	if !ok {
		return nil, buyerNotFound(id)
	}

	return &b, nil
}

func (t *settlementTx) SetBalance(ctx context.Context, buyerID int64, balance decimal.Decimal) error {
	buyer, err := t.BuyerForUpdate(ctx, buyerID)
	if err != nil {
		return err
	}

	buyer.Balance = balance
	t.buyers[buyerID] = *buyer

	return nil
}

func (t *settlementTx) CreatePurchase(_ context.Context, purchase *entity.Purchase) error {
	t.seq++
	purchase.ID = t.seq
	t.purchases = append(t.purchases, *purchase)

	return nil
}

func (t *settlementTx) SaveInventory(ctx context.Context, deal *entity.Deal) error {
	current, err := t.DealForUpdate(ctx, deal.ID)
	if err != nil {
		return err
	}

	current.AvailableQuantity = deal.AvailableQuantity
	current.Status = deal.Status
	current.OwnerID = deal.OwnerID
	current.UpdatedAt = deal.UpdatedAt
	t.deals[deal.ID] = *current

	return nil
}
