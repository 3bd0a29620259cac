package deal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/service/oracle"
	"bullion_market/internal/domain/service/pricing"
	"bullion_market/internal/domain/value"
	"bullion_market/pkg/errcodes"
)

// PreviewRequest задаёт чистоту (явно или через пробу) и либо скидку, либо целевую цену.
type PreviewRequest struct {
	Purity     *decimal.Decimal
	Grade      string
	Adjustment *decimal.Decimal
	FixedPrice *decimal.Decimal
}

type Preview struct {
	ReferencePrice decimal.Decimal
	Source         oracle.Source
	FetchedAt      time.Time
	Purity         decimal.Decimal
	BaseValue      decimal.Decimal
	UnitPrice      decimal.Decimal
	Adjustment     decimal.Decimal
}

// Preview считает цену теми же функциями, что и расчёт покупки.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (*Preview, error) {
	if req.Adjustment != nil && req.FixedPrice != nil {
		return nil, domain.NewError(domain.KindInvalidInput, errcodes.InvalidPricing,
			"either adjustment or fixed price must be set, not both")
	}

	purity, ok := value.ResolvePurity(req.Purity, value.NormalizeGrade(req.Grade))
	if !ok || !value.ValidPurity(purity) {
		return nil, domain.NewError(domain.KindInvalidInput, errcodes.InvalidGrade,
			"purity within (0, 1] or a known grade is required")
	}

	snap := s.oracle.Snapshot(ctx)
	base := pricing.BaseValue(snap.PricePerKg, purity)

	out := &Preview{
		ReferencePrice: snap.PricePerKg,
		Source:         snap.Source,
		FetchedAt:      snap.FetchedAt,
		Purity:         purity,
		BaseValue:      base,
	}

	if req.FixedPrice != nil {
		if !req.FixedPrice.IsPositive() {
			return nil, domain.NewError(domain.KindInvalidInput, errcodes.InvalidPricing,
				"fixed price must be positive")
		}

		adj, err := pricing.ImpliedAdjustment(*req.FixedPrice, base)
		if err != nil {
			return nil, err
		}

		out.UnitPrice = req.FixedPrice.Round(2)
		out.Adjustment = adj

		return out, nil
	}

	adj := decimal.Zero
	if req.Adjustment != nil {
		adj = *req.Adjustment
	}

	if adj.Abs().GreaterThanOrEqual(maxAdjustment) {
		return nil, domain.NewError(domain.KindInvalidInput, errcodes.InvalidPricing,
			"adjustment must be within (-100, 100)")
	}

	out.UnitPrice = pricing.UnitPrice(snap.PricePerKg, purity, adj)
	out.Adjustment = adj

	return out, nil
}

// OracleSnapshot текущая справочная цена с источником.
func (s *Service) OracleSnapshot(ctx context.Context) oracle.Snapshot {
	return s.oracle.Snapshot(ctx)
}
