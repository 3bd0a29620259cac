// Package settlement атомарный расчёт покупки: кошелёк, остаток лота и запись о покупке
// меняются в одной транзакции. Побочные действия выполняются после коммита и не откатывают его.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
	"bullion_market/internal/domain/service/pricing"
	"bullion_market/internal/domain/value"
	"bullion_market/internal/metrics"
	"bullion_market/pkg/contextx"
	"bullion_market/pkg/errcodes"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type DealReader interface {
	GetByID(ctx context.Context, id int64) (*entity.Deal, error)
}

type ExportEnqueuer interface {
	Enqueue(ctx context.Context, deal *entity.Deal, purchase *entity.Purchase) (*entity.PendingExport, error)
}

type EventPublisher interface {
	PublishSettled(ctx context.Context, event SettledEvent) error
}

// PurchaseRequest запрос покупателя.
type PurchaseRequest struct {
	DealID           int64
	BuyerID          int64
	Quantity         decimal.Decimal
	DeliveryLocation string
	AgreementTerms   string
}

// Result итог расчёта.
type Result struct {
	Purchase          *entity.Purchase
	RemainingQuantity decimal.Decimal
	SoldOut           bool
}

// SettledEvent событие о завершённом расчёте.
type SettledEvent struct {
	PurchaseID int64           `json:"purchase_id"`
	DealID     int64           `json:"deal_id"`
	BuyerID    int64           `json:"buyer_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	SoldOut    bool            `json:"sold_out"`
	SettledAt  time.Time       `json:"settled_at"`
}

type Service struct {
	deals      DealReader
	tx         repository.Transactor
	oracle     pricing.ReferenceSource
	exports    ExportEnqueuer
	agreements repository.AgreementRepository
	events     EventPublisher
	metrics    *metrics.Registry
	now        func() time.Time
}

func NewService(
	deals DealReader,
	tx repository.Transactor,
	oracle pricing.ReferenceSource,
	exports ExportEnqueuer,
	agreements repository.AgreementRepository,
) *Service {
	return &Service{
		deals:      deals,
		tx:         tx,
		oracle:     oracle,
		exports:    exports,
		agreements: agreements,
		now:        time.Now,
	}
}

func (s *Service) WithEventPublisher(events EventPublisher) *Service {
	s.events = events
	return s
}

func (s *Service) WithMetrics(m *metrics.Registry) *Service {
	s.metrics = m
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Settle проверяет предусловия, затем атомарно списывает средства, создаёт покупку
// и уменьшает остаток лота. Остаток и баланс перепроверяются под блокировкой строк.
func (s *Service) Settle(ctx context.Context, req PurchaseRequest) (*Result, error) {
	result, err := s.settle(ctx, req)

	outcome := "ok"
	amount := 0.0
	if err != nil {
		outcome = "error"
		if code, ok := domain.GetCode(err); ok {
			outcome = code.String()
		}
	} else {
		amount = result.Purchase.TotalPrice.InexactFloat64()
	}
	s.metrics.ObserveSettlement(outcome, amount)

	return result, err
}

func (s *Service) settle(ctx context.Context, req PurchaseRequest) (*Result, error) {
	if !req.Quantity.IsPositive() {
		return nil, domain.NewError(domain.KindUnprocessable, errcodes.InvalidQuantity,
			"quantity must be greater than zero")
	}

	if !value.FitsPlaces(req.Quantity, value.QuantityPlaces) {
		return nil, domain.NewErrorf(domain.KindUnprocessable, errcodes.InvalidQuantity,
			"quantity must have at most %d decimal places", value.QuantityPlaces)
	}

	deal, err := s.deals.GetByID(ctx, req.DealID)
	if err != nil {
		return nil, fmt.Errorf("deals.GetByID: %w", err)
	}

	if err := checkDeal(deal, req.Quantity); err != nil {
		return nil, err
	}

	// Справочная цена берётся один раз до транзакции и используется для расчёта
	// по заблокированной строке лота. Для FIXED оракул не вызывается.
	var (
		reference fixedReference
		fetched   bool
	)
	if deal.PricingMode == value.PricingDynamic {
		reference = fixedReference(s.oracle.ReferencePrice(ctx))
		fetched = true
	}

	if _, err := pricing.Resolve(ctx, deal, reference); err != nil {
		return nil, fmt.Errorf("pricing.Resolve: %w", err)
	}

	var result *Result

	// После прохождения предусловий расчёт не прерывается отменой запроса.
	txCtx := context.WithoutCancel(ctx)

	err = s.tx.WithinSettlement(txCtx, func(ctx context.Context, tx repository.SettlementTx) error {
		locked, err := tx.DealForUpdate(ctx, req.DealID)
		if err != nil {
			return fmt.Errorf("tx.DealForUpdate: %w", err)
		}

		if err := checkDeal(locked, req.Quantity); err != nil {
			return err
		}

		// Лот мог стать DYNAMIC между чтением и блокировкой.
		if locked.PricingMode == value.PricingDynamic && !fetched {
			reference = fixedReference(s.oracle.ReferencePrice(ctx))
		}

		unitPrice, err := pricing.Resolve(ctx, locked, reference)
		if err != nil {
			return fmt.Errorf("pricing.Resolve: %w", err)
		}

		total := pricing.TotalPrice(req.Quantity, unitPrice)

		buyer, err := tx.BuyerForUpdate(ctx, req.BuyerID)
		if err != nil {
			return fmt.Errorf("tx.BuyerForUpdate: %w", err)
		}

		if !buyer.CanAfford(total) {
			return domain.NewErrorf(domain.KindUnprocessable, errcodes.InsufficientFunds,
				"insufficient funds: balance %s, required %s", buyer.Balance.StringFixed(2), total.StringFixed(2))
		}

		if err := tx.SetBalance(ctx, buyer.ID, buyer.Balance.Sub(total)); err != nil {
			return fmt.Errorf("tx.SetBalance: %w", err)
		}

		now := s.now()

		purchase := &entity.Purchase{
			DealID:           locked.ID,
			BuyerID:          buyer.ID,
			Quantity:         req.Quantity,
			UnitPrice:        unitPrice,
			TotalPrice:       total,
			DeliveryLocation: deliveryLocation(req.DeliveryLocation, buyer, locked),
			Status:           value.LogisticsConfirmed,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		if err := tx.CreatePurchase(ctx, purchase); err != nil {
			return fmt.Errorf("tx.CreatePurchase: %w", err)
		}

		soldOut := locked.Fill(req.Quantity, buyer.ID, now)

		if err := tx.SaveInventory(ctx, locked); err != nil {
			return fmt.Errorf("tx.SaveInventory: %w", err)
		}

		deal = locked
		result = &Result{
			Purchase:          purchase,
			RemainingQuantity: locked.AvailableQuantity,
			SoldOut:           soldOut,
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tx.WithinSettlement: %w", err)
	}

	logger(ctx).Info("purchase settled",
		"purchase_id", result.Purchase.ID,
		"deal_id", deal.ID,
		"buyer_id", req.BuyerID,
		"quantity", req.Quantity.String(),
		"total", result.Purchase.TotalPrice.String(),
		"sold_out", result.SoldOut,
	)

	s.afterCommit(txCtx, deal, result, req.AgreementTerms)

	return result, nil
}

func checkDeal(deal *entity.Deal, quantity decimal.Decimal) error {
	if !deal.IsOpen() {
		return domain.NewErrorf(domain.KindUnprocessable, errcodes.DealUnavailable,
			"deal %d is %s", deal.ID, deal.Status)
	}

	if !deal.CanFill(quantity) {
		return domain.NewErrorf(domain.KindUnprocessable, errcodes.InsufficientInventory,
			"insufficient inventory: requested %s, remaining %s", quantity.String(), deal.AvailableQuantity.String())
	}

	return nil
}

func deliveryLocation(requested string, buyer *entity.Buyer, deal *entity.Deal) string {
	switch {
	case requested != "":
		return requested
	case buyer.DefaultDeliveryLocation != "":
		return buyer.DefaultDeliveryLocation
	default:
		return deal.Destination
	}
}

// fixedReference справочная цена, зафиксированная на момент запроса.
type fixedReference decimal.Decimal

func (f fixedReference) ReferencePrice(context.Context) decimal.Decimal {
	return decimal.Decimal(f)
}
