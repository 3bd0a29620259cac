// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

import (
	"time"

	"github.com/shopspring/decimal"
)

// DealIngest Лот в формате продавца
type DealIngest struct {
	ExternalID            string           `json:"externalId" validate:"required,max=128"`
	Commodity             string           `json:"commodity" validate:"required,max=64"`
	Company               string           `json:"company" validate:"required,max=255"`
	Grade                 string           `json:"grade,omitempty"`
	Form                  string           `json:"form,omitempty"`
	Quantity              decimal.Decimal  `json:"quantity"`
	Purity                *decimal.Decimal `json:"purity,omitempty"`
	Adjustment            decimal.Decimal  `json:"adjustment"`
	PricingMode           string           `json:"pricingMode" validate:"required,oneof=FIXED DYNAMIC"`
	UnitPrice             decimal.Decimal  `json:"unitPrice"`
	DeliveryTerms         string           `json:"deliveryTerms,omitempty"`
	Origin                string           `json:"origin,omitempty"`
	Destination           string           `json:"destination,omitempty"`
	TransportMethod       string           `json:"transportMethod,omitempty"`
	Frequency             string           `json:"frequency,omitempty"`
	PeriodQuantity        decimal.Decimal  `json:"periodQuantity"`
	TotalContractQuantity decimal.Decimal  `json:"totalContractQuantity"`
}

// DealIngestResult Результат приёма лота
type DealIngestResult struct {
	Deal    Deal `json:"deal"`
	Created bool `json:"created"`
}

// Deal Лот с ценой за единицу на момент чтения
type Deal struct {
	ID                    int64           `json:"id"`
	ExternalID            string          `json:"externalId"`
	Commodity             string          `json:"commodity"`
	Company               string          `json:"company"`
	Grade                 string          `json:"grade,omitempty"`
	Form                  string          `json:"form,omitempty"`
	Quantity              decimal.Decimal `json:"quantity"`
	AvailableQuantity     decimal.Decimal `json:"availableQuantity"`
	Purity                decimal.Decimal `json:"purity"`
	Adjustment            decimal.Decimal `json:"adjustment"`
	PricingMode           string          `json:"pricingMode"`
	UnitPrice             decimal.Decimal `json:"unitPrice"`
	PriceSource           string          `json:"priceSource,omitempty"`
	DeliveryTerms         string          `json:"deliveryTerms,omitempty"`
	Origin                string          `json:"origin,omitempty"`
	Destination           string          `json:"destination,omitempty"`
	TransportMethod       string          `json:"transportMethod,omitempty"`
	Frequency             string          `json:"frequency"`
	PeriodQuantity        decimal.Decimal `json:"periodQuantity"`
	TotalContractQuantity decimal.Decimal `json:"totalContractQuantity"`
	Status                string          `json:"status"`
	OwnerID               *int64          `json:"ownerId,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

type DealList struct {
	Items []Deal `json:"items"`
}

// PricingPreviewRequest Чистота задаётся явно или пробой, цена скидкой или целевой ценой
type PricingPreviewRequest struct {
	Purity     *decimal.Decimal `json:"purity,omitempty"`
	Grade      string           `json:"grade,omitempty"`
	Adjustment *decimal.Decimal `json:"adjustment,omitempty"`
	FixedPrice *decimal.Decimal `json:"fixedPrice,omitempty"`
}

type PricingPreview struct {
	ReferencePrice decimal.Decimal `json:"referencePrice"`
	Source         string          `json:"source"`
	FetchedAt      *time.Time      `json:"fetchedAt,omitempty"`
	Purity         decimal.Decimal `json:"purity"`
	BaseValue      decimal.Decimal `json:"baseValue"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Adjustment     decimal.Decimal `json:"adjustment"`
}

// OraclePrice Справочная цена за килограмм
type OraclePrice struct {
	PricePerKg decimal.Decimal `json:"pricePerKg"`
	Source     string          `json:"source"`
	FetchedAt  *time.Time      `json:"fetchedAt,omitempty"`
}

type PurchaseRequest struct {
	Quantity         decimal.Decimal `json:"quantity"`
	DeliveryLocation string          `json:"deliveryLocation,omitempty" validate:"max=255"`
	AgreementTerms   string          `json:"agreementTerms,omitempty"`
}

type PurchaseResult struct {
	PurchaseID        int64           `json:"purchaseId"`
	RemainingQuantity decimal.Decimal `json:"remainingQuantity"`
	SoldOut           bool            `json:"soldOut"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
}

type Purchase struct {
	ID               int64           `json:"id"`
	DealID           int64           `json:"dealId"`
	BuyerID          int64           `json:"buyerId"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	DeliveryLocation string          `json:"deliveryLocation"`
	Status           string          `json:"status"`
	Carrier          string          `json:"carrier,omitempty"`
	TrackingID       string          `json:"trackingId,omitempty"`
	ShippedAt        *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt      *time.Time      `json:"deliveredAt,omitempty"`
	ParentID         *int64          `json:"parentId,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type LogisticsUpdate struct {
	Status     string `json:"status"`
	Carrier    string `json:"carrier,omitempty" validate:"max=128"`
	TrackingID string `json:"trackingId,omitempty" validate:"max=128"`
}

// ExportParams Параметры проекта на платформе финансирования
type ExportParams struct {
	Name            string          `json:"name"`
	RiskTier        string          `json:"riskTier"`
	TargetYield     decimal.Decimal `json:"targetYield"`
	DurationMonths  int             `json:"durationMonths"`
	MinInvestment   decimal.Decimal `json:"minInvestment"`
	AmountRequired  decimal.Decimal `json:"amountRequired"`
	Description     string          `json:"description"`
	Origin          string          `json:"origin"`
	Destination     string          `json:"destination"`
	TransportMethod string          `json:"transportMethod"`
	MaterialForm    string          `json:"materialForm"`
	PurityPercent   decimal.Decimal `json:"purityPercent"`
}

type Export struct {
	ID              int64        `json:"id"`
	PurchaseID      int64        `json:"purchaseId"`
	DealID          int64        `json:"dealId"`
	Params          ExportParams `json:"params"`
	Status          string       `json:"status"`
	ExternalID      string       `json:"externalId,omitempty"`
	ReviewedBy      *int64       `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time   `json:"reviewedAt,omitempty"`
	RejectionReason string       `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

type ExportList struct {
	Items []Export `json:"items"`
}

// ExportParamsPatch Частичное изменение параметров, отсутствующее поле не меняется
type ExportParamsPatch struct {
	Name            *string          `json:"name,omitempty"`
	RiskTier        *string          `json:"riskTier,omitempty"`
	TargetYield     *decimal.Decimal `json:"targetYield,omitempty"`
	DurationMonths  *int             `json:"durationMonths,omitempty"`
	MinInvestment   *decimal.Decimal `json:"minInvestment,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Origin          *string          `json:"origin,omitempty"`
	Destination     *string          `json:"destination,omitempty"`
	TransportMethod *string          `json:"transportMethod,omitempty"`
	AmountRequired  *decimal.Decimal `json:"amountRequired,omitempty"`
	MaterialForm    *string          `json:"materialForm,omitempty"`
	PurityPercent   *decimal.Decimal `json:"purityPercent,omitempty"`
}

type ExportRejection struct {
	Reason string `json:"reason"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`

	// SupportID Идентификатор запроса для поддержки
	SupportID string `json:"supportId"`
}

// ErrorCode Код ошибки
type ErrorCode string
