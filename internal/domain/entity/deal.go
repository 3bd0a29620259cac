package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"bullion_market/internal/domain/value"
)

// Deal лот продавца с общим и оставшимся количеством (кг).
type Deal struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`

	Commodity string      `json:"commodity"`
	Company   string      `json:"company"`
	Grade     value.Grade `json:"grade,omitempty"`
	Form      string      `json:"form,omitempty"`

	Quantity          decimal.Decimal `json:"quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`

	Purity      decimal.Decimal   `json:"purity"`
	Adjustment  decimal.Decimal   `json:"adjustment"` // >0 скидка, <0 премия, в процентах
	PricingMode value.PricingMode `json:"pricing_mode"`
	UnitPrice   decimal.Decimal   `json:"unit_price"` // только для FIXED

	DeliveryTerms   string `json:"delivery_terms,omitempty"`
	Origin          string `json:"origin,omitempty"`
	Destination     string `json:"destination,omitempty"`
	TransportMethod string `json:"transport_method,omitempty"`

	Frequency             value.Frequency `json:"frequency"`
	PeriodQuantity        decimal.Decimal `json:"period_quantity"`
	TotalContractQuantity decimal.Decimal `json:"total_contract_quantity"`

	Status value.DealStatus `json:"status"`
	// OwnerID покупатель, на котором лот закрылся.
	OwnerID *int64 `json:"owner_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Deal) IsOpen() bool {
	return d.Status == value.DealOpen
}

func (d *Deal) IsPeriodic() bool {
	return d.Frequency.Periodic()
}

// CanFill проверяет, что в лоте хватает остатка.
func (d *Deal) CanFill(quantity decimal.Decimal) bool {
	return quantity.LessThanOrEqual(d.AvailableQuantity)
}

// Fill списывает количество и закрывает лот, если остаток исчерпан.
// Возвращает true, если лот закрылся.
func (d *Deal) Fill(quantity decimal.Decimal, buyerID int64, now time.Time) bool {
	d.AvailableQuantity = d.AvailableQuantity.Sub(quantity)
	d.UpdatedAt = now

	if d.AvailableQuantity.IsPositive() {
		return false
	}

	d.AvailableQuantity = decimal.Zero
	d.Status = value.DealClosed
	d.OwnerID = &buyerID

	return true
}
