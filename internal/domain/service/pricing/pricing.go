// Package pricing содержит чистые функции расчёта цены за единицу.
// Одни и те же функции используются для превью, создания лота и покупки.
package pricing

import (
	"github.com/shopspring/decimal"

	"bullion_market/internal/domain"
	"bullion_market/pkg/errcodes"
)

const (
	pricePlaces      = 2
	adjustmentPlaces = 4
)

//nolint:gochecknoglobals
var hundred = decimal.NewFromInt(100)

// BaseValue стоимость чистого металла в единице массы.
func BaseValue(reference, purity decimal.Decimal) decimal.Decimal {
	return reference.Mul(purity)
}

// UnitPrice round2(reference * purity * (1 - adjustment/100)).
// Положительная корректировка это скидка, отрицательная это премия.
func UnitPrice(reference, purity, adjustmentPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(adjustmentPercent.Div(hundred))

	return BaseValue(reference, purity).Mul(factor).Round(pricePlaces)
}

// ImpliedAdjustment обратный расчёт корректировки из фиксированной цены:
// (1 - fixed/base) * 100. Цена выше базы даёт отрицательную корректировку (премию).
func ImpliedAdjustment(fixedPrice, baseValue decimal.Decimal) (decimal.Decimal, error) {
	if !baseValue.IsPositive() {
		return decimal.Zero, domain.NewError(domain.KindInvalidInput, errcodes.InvalidPricing,
			"base value must be positive")
	}

	ratio := fixedPrice.DivRound(baseValue, adjustmentPlaces+4)

	return decimal.NewFromInt(1).Sub(ratio).Mul(hundred).Round(adjustmentPlaces), nil
}

// TotalPrice стоимость покупки. Округляется до копеек вверх,
// поэтому списание никогда не меньше точного произведения.
func TotalPrice(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).RoundCeil(pricePlaces)
}
