package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/value"
	"bullion_market/pkg/errcodes"
)

// ReferenceSource источник справочной цены за килограмм.
type ReferenceSource interface {
	ReferencePrice(ctx context.Context) decimal.Decimal
}

// Strategy способ получить цену за единицу для конкретного лота.
type Strategy interface {
	ResolveUnitPrice(ctx context.Context, src ReferenceSource) (decimal.Decimal, error)
	Mode() value.PricingMode
}

// Fixed цена лота хранится в нём самом, калькулятор не вызывается.
type Fixed struct {
	Price decimal.Decimal
}

func (f Fixed) ResolveUnitPrice(context.Context, ReferenceSource) (decimal.Decimal, error) {
	if !f.Price.IsPositive() {
		return decimal.Zero, domain.NewError(domain.KindUnprocessable, errcodes.InvalidPricing,
			"fixed unit price is not set")
	}

	return f.Price, nil
}

func (Fixed) Mode() value.PricingMode { return value.PricingFixed }

// Dynamic цена пересчитывается от текущей справочной цены.
type Dynamic struct {
	Purity     decimal.Decimal
	Adjustment decimal.Decimal
}

func (d Dynamic) ResolveUnitPrice(ctx context.Context, src ReferenceSource) (decimal.Decimal, error) {
	price := UnitPrice(src.ReferencePrice(ctx), d.Purity, d.Adjustment)
	if !price.IsPositive() {
		return decimal.Zero, domain.NewError(domain.KindUnprocessable, errcodes.InvalidPricing,
			"resolved unit price is not positive")
	}

	return price, nil
}

func (Dynamic) Mode() value.PricingMode { return value.PricingDynamic }

// ForDeal строит стратегию по режиму цены лота.
func ForDeal(deal *entity.Deal) (Strategy, error) {
	switch deal.PricingMode {
	case value.PricingFixed:
		return Fixed{Price: deal.UnitPrice}, nil
	case value.PricingDynamic:
		return Dynamic{Purity: deal.Purity, Adjustment: deal.Adjustment}, nil
	default:
		return nil, domain.NewError(domain.KindInternal, errcodes.InvalidPricing,
			fmt.Sprintf("unknown pricing mode %q", deal.PricingMode))
	}
}

// Resolve цена лота на текущий момент.
func Resolve(ctx context.Context, deal *entity.Deal, src ReferenceSource) (decimal.Decimal, error) {
	strategy, err := ForDeal(deal)
	if err != nil {
		return decimal.Zero, err
	}

	return strategy.ResolveUnitPrice(ctx, src)
}
