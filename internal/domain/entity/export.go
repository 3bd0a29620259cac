package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"bullion_market/internal/domain/value"
)

// ExportParams снимок параметров проекта для внешней платформы.
type ExportParams struct {
	Name            string          `json:"name"`
	RiskTier        value.RiskTier  `json:"risk_tier"`
	TargetYield     decimal.Decimal `json:"target_yield"`
	DurationMonths  int             `json:"duration_months"`
	MinInvestment   decimal.Decimal `json:"min_investment"`
	AmountRequired  decimal.Decimal `json:"amount_required"`
	Description     string          `json:"description"`
	Origin          string          `json:"origin"`
	Destination     string          `json:"destination"`
	TransportMethod string          `json:"transport_method"`
	MaterialForm    string          `json:"material_form"`
	PurityPercent   decimal.Decimal `json:"purity_percent"`
}

// PendingExport запись очереди ревью, одна на каждую покупку.
type PendingExport struct {
	ID              int64              `json:"id"`
	PurchaseID      int64              `json:"purchase_id"`
	DealID          int64              `json:"deal_id"`
	Params          ExportParams       `json:"params"`
	IdempotencyKey  string             `json:"idempotency_key"`
	Status          value.ExportStatus `json:"status"`
	ExternalID      string             `json:"external_id,omitempty"`
	ReviewedBy      *int64             `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time         `json:"reviewed_at,omitempty"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func (e *PendingExport) IsPending() bool {
	return e.Status == value.ExportPending
}
