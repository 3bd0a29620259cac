package server

import (
	"time"

	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/service/deal"
	"bullion_market/internal/domain/service/export"
	"bullion_market/internal/domain/service/oracle"
	"bullion_market/internal/domain/service/settlement"
	"bullion_market/internal/domain/value"
	"bullion_market/pkg/rest"
)

func newDomainDealInput(in rest.DealIngest) deal.Input {
	return deal.Input{
		ExternalID:            in.ExternalID,
		Commodity:             in.Commodity,
		Company:               in.Company,
		Grade:                 in.Grade,
		Form:                  in.Form,
		Quantity:              in.Quantity,
		Purity:                in.Purity,
		Adjustment:            in.Adjustment,
		PricingMode:           value.PricingMode(in.PricingMode),
		UnitPrice:             in.UnitPrice,
		DeliveryTerms:         in.DeliveryTerms,
		Origin:                in.Origin,
		Destination:           in.Destination,
		TransportMethod:       in.TransportMethod,
		Frequency:             in.Frequency,
		PeriodQuantity:        in.PeriodQuantity,
		TotalContractQuantity: in.TotalContractQuantity,
	}
}

func newRESTDeal(d entity.Deal) rest.Deal {
	return rest.Deal{
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
		PricingMode:           d.PricingMode.String(),
		UnitPrice:             d.UnitPrice,
		DeliveryTerms:         d.DeliveryTerms,
		Origin:                d.Origin,
		Destination:           d.Destination,
		TransportMethod:       d.TransportMethod,
		Frequency:             d.Frequency.String(),
		PeriodQuantity:        d.PeriodQuantity,
		TotalContractQuantity: d.TotalContractQuantity,
		Status:                d.Status.String(),
		OwnerID:               d.OwnerID,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

func newRESTDealView(v deal.View) rest.Deal {
	out := newRESTDeal(v.Deal)
	out.UnitPrice = v.LivePrice
	out.PriceSource = string(v.PriceSource)

	return out
}

func newDomainPreviewRequest(in rest.PricingPreviewRequest) deal.PreviewRequest {
	return deal.PreviewRequest{
		Purity:     in.Purity,
		Grade:      in.Grade,
		Adjustment: in.Adjustment,
		FixedPrice: in.FixedPrice,
	}
}

func newRESTPreview(p *deal.Preview) rest.PricingPreview {
	return rest.PricingPreview{
		ReferencePrice: p.ReferencePrice,
		Source:         string(p.Source),
		FetchedAt:      optionalTime(p.FetchedAt),
		Purity:         p.Purity,
		BaseValue:      p.BaseValue,
		UnitPrice:      p.UnitPrice,
		Adjustment:     p.Adjustment,
	}
}

func newRESTOraclePrice(s oracle.Snapshot) rest.OraclePrice {
	return rest.OraclePrice{
		PricePerKg: s.PricePerKg,
		Source:     string(s.Source),
		FetchedAt:  optionalTime(s.FetchedAt),
	}
}

func newRESTPurchaseResult(r *settlement.Result) rest.PurchaseResult {
	return rest.PurchaseResult{
		PurchaseID:        r.Purchase.ID,
		RemainingQuantity: r.RemainingQuantity,
		SoldOut:           r.SoldOut,
		UnitPrice:         r.Purchase.UnitPrice,
		TotalPrice:        r.Purchase.TotalPrice,
	}
}

func newRESTPurchase(p *entity.Purchase) rest.Purchase {
	return rest.Purchase{
		ID:               p.ID,
		DealID:           p.DealID,
		BuyerID:          p.BuyerID,
		Quantity:         p.Quantity,
		UnitPrice:        p.UnitPrice,
		TotalPrice:       p.TotalPrice,
		DeliveryLocation: p.DeliveryLocation,
		Status:           p.Status.String(),
		Carrier:          p.Carrier,
		TrackingID:       p.TrackingID,
		ShippedAt:        p.ShippedAt,
		DeliveredAt:      p.DeliveredAt,
		ParentID:         p.ParentID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func newRESTExport(e *entity.PendingExport) rest.Export {
	p := e.Params

	return rest.Export{
		ID:         e.ID,
		PurchaseID: e.PurchaseID,
		DealID:     e.DealID,
		Params: rest.ExportParams{
			Name:            p.Name,
			RiskTier:        string(p.RiskTier),
			TargetYield:     p.TargetYield,
			DurationMonths:  p.DurationMonths,
			MinInvestment:   p.MinInvestment,
			AmountRequired:  p.AmountRequired,
			Description:     p.Description,
			Origin:          p.Origin,
			Destination:     p.Destination,
			TransportMethod: p.TransportMethod,
			MaterialForm:    p.MaterialForm,
			PurityPercent:   p.PurityPercent,
		},
		Status:          e.Status.String(),
		ExternalID:      e.ExternalID,
		ReviewedBy:      e.ReviewedBy,
		ReviewedAt:      e.ReviewedAt,
		RejectionReason: e.RejectionReason,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func newDomainParamsPatch(in rest.ExportParamsPatch) export.ParamsPatch {
	var risk *value.RiskTier
	if in.RiskTier != nil {
		r := value.RiskTier(*in.RiskTier)
		risk = &r
	}

	return export.ParamsPatch{
		Name:            in.Name,
		RiskTier:        risk,
		TargetYield:     in.TargetYield,
		DurationMonths:  in.DurationMonths,
		MinInvestment:   in.MinInvestment,
		Description:     in.Description,
		Origin:          in.Origin,
		Destination:     in.Destination,
		TransportMethod: in.TransportMethod,
		AmountRequired:  in.AmountRequired,
		MaterialForm:    in.MaterialForm,
		PurityPercent:   in.PurityPercent,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
