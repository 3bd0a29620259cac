package entity

import (
	"time"

	"bullion_market/internal/domain/value"
)

// Agreement черновик соглашения по сделке. Документ формируется внешним сервисом.
type Agreement struct {
	ID         int64                 `json:"id"`
	DealID     int64                 `json:"deal_id"`
	PurchaseID int64                 `json:"purchase_id"`
	BuyerID    int64                 `json:"buyer_id"`
	Terms      string                `json:"terms"`
	Status     value.AgreementStatus `json:"status"`
	CreatedAt  time.Time             `json:"created_at"`
}
