package export

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/value"
	"bullion_market/pkg/errcodes"
)

// ParamsPatch частичное изменение снимка. nil означает "не менять".
// AmountRequired, MaterialForm и PurityPercent зафиксированы покупкой и не редактируются.
type ParamsPatch struct {
	Name            *string
	RiskTier        *value.RiskTier
	TargetYield     *decimal.Decimal
	DurationMonths  *int
	MinInvestment   *decimal.Decimal
	Description     *string
	Origin          *string
	Destination     *string
	TransportMethod *string

	AmountRequired *decimal.Decimal
	MaterialForm   *string
	PurityPercent  *decimal.Decimal
}

func (p ParamsPatch) immutableField() string {
	switch {
	case p.AmountRequired != nil:
		return "amount_required"
	case p.MaterialForm != nil:
		return "material_form"
	case p.PurityPercent != nil:
		return "purity_percent"
	default:
		return ""
	}
}

func (p ParamsPatch) validate() error {
	if field := p.immutableField(); field != "" {
		return domain.NewErrorf(domain.KindInvalidInput, errcodes.ImmutableField,
			"field %s cannot be changed", field)
	}

	switch {
	case p.Name != nil && *p.Name == "":
		return invalidParam("name must not be empty")
	case p.RiskTier != nil && !p.RiskTier.Valid():
		return invalidParam(fmt.Sprintf("unknown risk tier %q", *p.RiskTier))
	case p.TargetYield != nil && p.TargetYield.IsNegative():
		return invalidParam("target yield must not be negative")
	case p.DurationMonths != nil && *p.DurationMonths <= 0:
		return invalidParam("duration must be positive")
	case p.MinInvestment != nil && !p.MinInvestment.IsPositive():
		return invalidParam("min investment must be positive")
	}

	return nil
}

func invalidParam(msg string) error {
	return domain.NewError(domain.KindInvalidInput, errcodes.ValidationError, msg)
}

func (p ParamsPatch) apply(params *entity.ExportParams) {
	if p.Name != nil {
		params.Name = *p.Name
	}
	if p.RiskTier != nil {
		params.RiskTier = *p.RiskTier
	}
	if p.TargetYield != nil {
		params.TargetYield = *p.TargetYield
	}
	if p.DurationMonths != nil {
		params.DurationMonths = *p.DurationMonths
	}
	if p.MinInvestment != nil {
		params.MinInvestment = *p.MinInvestment
	}
	if p.Description != nil {
		params.Description = *p.Description
	}
	if p.Origin != nil {
		params.Origin = *p.Origin
	}
	if p.Destination != nil {
		params.Destination = *p.Destination
	}
	if p.TransportMethod != nil {
		params.TransportMethod = *p.TransportMethod
	}
}

// UpdateParams меняет редактируемые поля снимка записи в статусе PENDING.
func (s *Service) UpdateParams(ctx context.Context, id int64, patch ParamsPatch) (*entity.PendingExport, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	export, err := s.pending(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.apply(&export.Params)

	if export.Params.MinInvestment.GreaterThan(export.Params.AmountRequired) {
		return nil, invalidParam("min investment exceeds amount required")
	}

	if err := s.repo.UpdateParams(ctx, id, export.Params); err != nil {
		return nil, fmt.Errorf("repo.UpdateParams: %w", err)
	}

	export.UpdatedAt = s.now()

	return export, nil
}
