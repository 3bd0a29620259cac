package value

import "github.com/shopspring/decimal"

// Точность хранения: масса до 0.0001, деньги до 0.01.
const (
	QuantityPlaces int32 = 4
	MoneyPlaces    int32 = 2
)

// FitsPlaces true, если у d не больше places знаков после запятой.
func FitsPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
