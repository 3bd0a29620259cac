// Package repository контракты хранилища, общие для сервисов и реализаций (postgres, memory).
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/value"
)

type DealRepository interface {
	Create(ctx context.Context, deal *entity.Deal) error
	GetByID(ctx context.Context, id int64) (*entity.Deal, error)
	GetByExternalID(ctx context.Context, externalID string) (*entity.Deal, error)
	// UpdateCommercial меняет коммерческие поля лота, не трогая остаток и статус.
	UpdateCommercial(ctx context.Context, deal *entity.Deal) error
	ListOpen(ctx context.Context, limit, offset int) ([]entity.Deal, error)
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id int64) (*entity.Purchase, error)
	// UpdateLogistics сохраняет статус доставки, только если текущий статус равен expected,
	// иначе возвращает ошибку с кодом LogisticsConflict.
	UpdateLogistics(ctx context.Context, purchase *entity.Purchase, expected value.LogisticsStatus) error
	ListByBuyer(ctx context.Context, buyerID int64, limit, offset int) ([]entity.Purchase, error)
}

type BuyerRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Buyer, error)
}

type ExportRepository interface {
	Create(ctx context.Context, export *entity.PendingExport) error
	GetByID(ctx context.Context, id int64) (*entity.PendingExport, error)
	GetByPurchaseID(ctx context.Context, purchaseID int64) (*entity.PendingExport, error)
	List(ctx context.Context, status value.ExportStatus, limit, offset int) ([]entity.PendingExport, error)
	// Методы ниже применяются только к записям в статусе PENDING,
	// иначе возвращают ошибку с кодом AlreadyProcessed.
	UpdateParams(ctx context.Context, id int64, params entity.ExportParams) error
	MarkExported(ctx context.Context, export *entity.PendingExport) error
	MarkRejected(ctx context.Context, export *entity.PendingExport) error
}

type AgreementRepository interface {
	Create(ctx context.Context, agreement *entity.Agreement) error
}

// SettlementTx операции, выполняемые в одной транзакции расчёта.
// Методы *ForUpdate блокируют строку до конца транзакции.
type SettlementTx interface {
	DealForUpdate(ctx context.Context, id int64) (*entity.Deal, error)
	BuyerForUpdate(ctx context.Context, id int64) (*entity.Buyer, error)
	SetBalance(ctx context.Context, buyerID int64, balance decimal.Decimal) error
	CreatePurchase(ctx context.Context, purchase *entity.Purchase) error
	SaveInventory(ctx context.Context, deal *entity.Deal) error
}

// Transactor выполняет fn атомарно: все изменения либо фиксируются, либо откатываются.
type Transactor interface {
	WithinSettlement(ctx context.Context, fn func(ctx context.Context, tx SettlementTx) error) error
}
