package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Buyer покупатель с кошельком. Баланс не уходит в минус в результате покупки.
type Buyer struct {
	ID                      int64           `json:"id"`
	Name                    string          `json:"name"`
	Balance                 decimal.Decimal `json:"balance"`
	DefaultDeliveryLocation string          `json:"default_delivery_location,omitempty"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

func (b *Buyer) CanAfford(amount decimal.Decimal) bool {
	return b.Balance.GreaterThanOrEqual(amount)
}
