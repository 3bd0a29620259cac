// Package memory хранилище в памяти процесса для локального запуска и тестов.
// Все операции сериализуются одним мьютексом.
package memory

import (
	"sync"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
	"bullion_market/internal/domain/value"
	"bullion_market/pkg/errcodes"
)

var _ repository.Transactor = (*Store)(nil)

type Store struct {
	mu sync.Mutex

	deals      map[int64]entity.Deal
	purchases  map[int64]entity.Purchase
	buyers     map[int64]entity.Buyer
	exports    map[int64]entity.PendingExport
	agreements map[int64]entity.Agreement

	seq int64
}

func New() *Store {
	return &Store{
		deals:      make(map[int64]entity.Deal),
		purchases:  make(map[int64]entity.Purchase),
		buyers:     make(map[int64]entity.Buyer),
		exports:    make(map[int64]entity.PendingExport),
		agreements: make(map[int64]entity.Agreement),
	}
}

func (s *Store) Deals() *DealRepository           { return &DealRepository{s: s} }
func (s *Store) Purchases() *PurchaseRepository   { return &PurchaseRepository{s: s} }
func (s *Store) Buyers() *BuyerRepository         { return &BuyerRepository{s: s} }
func (s *Store) Exports() *ExportRepository       { return &ExportRepository{s: s} }
func (s *Store) Agreements() *AgreementRepository { return &AgreementRepository{s: s} }

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}

	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}

func dealNotFound(id int64) error {
	return domain.NewErrorf(domain.KindNotFound, errcodes.DealNotFound, "deal %d not found", id)
}

func buyerNotFound(id int64) error {
	return domain.NewErrorf(domain.KindNotFound, errcodes.BuyerNotFound, "buyer %d not found", id)
}

func purchaseNotFound(id int64) error {
	return domain.NewErrorf(domain.KindNotFound, errcodes.PurchaseNotFound, "purchase %d not found", id)
}

func logisticsConflict(id int64, current value.LogisticsStatus) error {
	return domain.NewErrorf(domain.KindConflict, errcodes.LogisticsConflict,
		"purchase %d logistics changed concurrently, now %s", id, current)
}

func exportNotFound(id int64) error {
	return domain.NewErrorf(domain.KindNotFound, errcodes.ExportNotFound, "export %d not found", id)
}

func alreadyProcessed(e entity.PendingExport) error {
	return domain.NewErrorf(domain.KindConflict, errcodes.AlreadyProcessed,
		"export %d is already %s", e.ID, e.Status)
}
