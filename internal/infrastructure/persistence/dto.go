package persistence

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/value"
)

// dealSchema строка таблицы deals.
type dealSchema struct {
	ID                    int64           `db:"id"`
	ExternalID            string          `db:"external_id"`
	Commodity             string          `db:"commodity"`
	Company               string          `db:"company"`
	Grade                 string          `db:"grade"`
	Form                  string          `db:"form"`
	Quantity              decimal.Decimal `db:"quantity"`
	AvailableQuantity     decimal.Decimal `db:"available_quantity"`
	Purity                decimal.Decimal `db:"purity"`
	Adjustment            decimal.Decimal `db:"adjustment"`
	PricingMode           string          `db:"pricing_mode"`
	UnitPrice             decimal.Decimal `db:"unit_price"`
	DeliveryTerms         string          `db:"delivery_terms"`
	Origin                string          `db:"origin"`
	Destination           string          `db:"destination"`
	TransportMethod       string          `db:"transport_method"`
	Frequency             string          `db:"frequency"`
	PeriodQuantity        decimal.Decimal `db:"period_quantity"`
	TotalContractQuantity decimal.Decimal `db:"total_contract_quantity"`
	Status                string          `db:"status"`
	OwnerID               sql.NullInt64   `db:"owner_id"`
	CreatedAt             time.Time       `db:"created_at"`
	UpdatedAt             time.Time       `db:"updated_at"`
}

const dealColumns = `id, external_id, commodity, company, grade, form, quantity, available_quantity,
	purity, adjustment, pricing_mode, unit_price, delivery_terms, origin, destination,
	transport_method, frequency, period_quantity, total_contract_quantity, status, owner_id,
	created_at, updated_at`

func fromDeal(d *entity.Deal) dealSchema {
	return dealSchema{
		ID:                    d.ID,
		ExternalID:            d.ExternalID,
		Commodity:             d.Commodity,
		Company:               d.Company,
		Grade:                 string(d.Grade),
		Form:                  d.Form,
		Quantity:              d.Quantity,
		AvailableQuantity:     d.AvailableQuantity,
		Purity:                d.Purity,
		Adjustment:            d.Adjustment,
		PricingMode:           string(d.PricingMode),
		UnitPrice:             d.UnitPrice,
		DeliveryTerms:         d.DeliveryTerms,
		Origin:                d.Origin,
		Destination:           d.Destination,
		TransportMethod:       d.TransportMethod,
		Frequency:             string(d.Frequency),
		PeriodQuantity:        d.PeriodQuantity,
		TotalContractQuantity: d.TotalContractQuantity,
		Status:                string(d.Status),
		OwnerID:               nullInt64(d.OwnerID),
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

func (s *dealSchema) toDomain() *entity.Deal {
	return &entity.Deal{
		ID:                    s.ID,
		ExternalID:            s.ExternalID,
		Commodity:             s.Commodity,
		Company:               s.Company,
		Grade:                 value.Grade(s.Grade),
		Form:                  s.Form,
		Quantity:              s.Quantity,
		AvailableQuantity:     s.AvailableQuantity,
		Purity:                s.Purity,
		Adjustment:            s.Adjustment,
		PricingMode:           value.PricingMode(s.PricingMode),
		UnitPrice:             s.UnitPrice,
		DeliveryTerms:         s.DeliveryTerms,
		Origin:                s.Origin,
		Destination:           s.Destination,
		TransportMethod:       s.TransportMethod,
		Frequency:             value.Frequency(s.Frequency),
		PeriodQuantity:        s.PeriodQuantity,
		TotalContractQuantity: s.TotalContractQuantity,
		Status:                value.DealStatus(s.Status),
		OwnerID:               int64Ptr(s.OwnerID),
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

type purchaseSchema struct {
	ID               int64           `db:"id"`
	DealID           int64           `db:"deal_id"`
	BuyerID          int64           `db:"buyer_id"`
	Quantity         decimal.Decimal `db:"quantity"`
	UnitPrice        decimal.Decimal `db:"unit_price"`
	TotalPrice       decimal.Decimal `db:"total_price"`
	DeliveryLocation string          `db:"delivery_location"`
	Status           string          `db:"status"`
	Carrier          string          `db:"carrier"`
	TrackingID       string          `db:"tracking_id"`
	ShippedAt        sql.NullTime    `db:"shipped_at"`
	DeliveredAt      sql.NullTime    `db:"delivered_at"`
	ParentID         sql.NullInt64   `db:"parent_id"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

const purchaseColumns = `id, deal_id, buyer_id, quantity, unit_price, total_price, delivery_location,
	status, carrier, tracking_id, shipped_at, delivered_at, parent_id, created_at, updated_at`

func fromPurchase(p *entity.Purchase) purchaseSchema {
	return purchaseSchema{
		ID:               p.ID,
		DealID:           p.DealID,
		BuyerID:          p.BuyerID,
		Quantity:         p.Quantity,
		UnitPrice:        p.UnitPrice,
		TotalPrice:       p.TotalPrice,
		DeliveryLocation: p.DeliveryLocation,
		Status:           string(p.Status),
		Carrier:          p.Carrier,
		TrackingID:       p.TrackingID,
		ShippedAt:        nullTime(p.ShippedAt),
		DeliveredAt:      nullTime(p.DeliveredAt),
		ParentID:         nullInt64(p.ParentID),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (s *purchaseSchema) toDomain() *entity.Purchase {
	return &entity.Purchase{
		ID:               s.ID,
		DealID:           s.DealID,
		BuyerID:          s.BuyerID,
		Quantity:         s.Quantity,
		UnitPrice:        s.UnitPrice,
		TotalPrice:       s.TotalPrice,
		DeliveryLocation: s.DeliveryLocation,
		Status:           value.LogisticsStatus(s.Status),
		Carrier:          s.Carrier,
		TrackingID:       s.TrackingID,
		ShippedAt:        timePtr(s.ShippedAt),
		DeliveredAt:      timePtr(s.DeliveredAt),
		ParentID:         int64Ptr(s.ParentID),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

type buyerSchema struct {
	ID                      int64           `db:"id"`
	Name                    string          `db:"name"`
	Balance                 decimal.Decimal `db:"balance"`
	DefaultDeliveryLocation string          `db:"default_delivery_location"`
	UpdatedAt               time.Time       `db:"updated_at"`
}

const buyerColumns = `id, name, balance, default_delivery_location, updated_at`

func (s *buyerSchema) toDomain() *entity.Buyer {
	return &entity.Buyer{
		ID:                      s.ID,
		Name:                    s.Name,
		Balance:                 s.Balance,
		DefaultDeliveryLocation: s.DefaultDeliveryLocation,
		UpdatedAt:               s.UpdatedAt,
	}
}

// exportSchema снимок параметров хранится в jsonb.
type exportSchema struct {
	ID              int64         `db:"id"`
	PurchaseID      int64         `db:"purchase_id"`
	DealID          int64         `db:"deal_id"`
	Params          []byte        `db:"params"`
	IdempotencyKey  string        `db:"idempotency_key"`
	Status          string        `db:"status"`
	ExternalID      string        `db:"external_id"`
	ReviewedBy      sql.NullInt64 `db:"reviewed_by"`
	ReviewedAt      sql.NullTime  `db:"reviewed_at"`
	RejectionReason string        `db:"rejection_reason"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

const exportColumns = `id, purchase_id, deal_id, params, idempotency_key, status, external_id,
	reviewed_by, reviewed_at, rejection_reason, created_at, updated_at`

func (s *exportSchema) toDomain() (*entity.PendingExport, error) {
	var params entity.ExportParams
	if len(s.Params) > 0 {
		if err := json.Unmarshal(s.Params, &params); err != nil {
			return nil, err
		}
	}

	return &entity.PendingExport{
		ID:              s.ID,
		PurchaseID:      s.PurchaseID,
		DealID:          s.DealID,
		Params:          params,
		IdempotencyKey:  s.IdempotencyKey,
		Status:          value.ExportStatus(s.Status),
		ExternalID:      s.ExternalID,
		ReviewedBy:      int64Ptr(s.ReviewedBy),
		ReviewedAt:      timePtr(s.ReviewedAt),
		RejectionReason: s.RejectionReason,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
