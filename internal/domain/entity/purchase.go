package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"bullion_market/internal/domain/value"
)

// Purchase запись об одном расчёте по лоту. Цена фиксируется в момент покупки.
type Purchase struct {
	ID               int64                 `json:"id"`
	DealID           int64                 `json:"deal_id"`
	BuyerID          int64                 `json:"buyer_id"`
	Quantity         decimal.Decimal       `json:"quantity"`
	UnitPrice        decimal.Decimal       `json:"unit_price"`
	TotalPrice       decimal.Decimal       `json:"total_price"`
	DeliveryLocation string                `json:"delivery_location"`
	Status           value.LogisticsStatus `json:"status"`
	Carrier          string                `json:"carrier,omitempty"`
	TrackingID       string                `json:"tracking_id,omitempty"`
	ShippedAt        *time.Time            `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time            `json:"delivered_at,omitempty"`
	// ParentID предыдущий транш для повторных поставок.
	ParentID  *int64    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NextTranche копия покупки для следующего периода поставки.
func (p *Purchase) NextTranche(now time.Time) *Purchase {
	parentID := p.ID

	return &Purchase{
		DealID:           p.DealID,
		BuyerID:          p.BuyerID,
		Quantity:         p.Quantity,
		UnitPrice:        p.UnitPrice,
		TotalPrice:       p.TotalPrice,
		DeliveryLocation: p.DeliveryLocation,
		Status:           value.LogisticsConfirmed,
		ParentID:         &parentID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
