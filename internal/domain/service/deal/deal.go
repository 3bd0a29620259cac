// Package deal приём лотов от продавцов и чтение лотов с текущей ценой.
package deal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/shopspring/decimal"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
	"bullion_market/internal/domain/service/oracle"
	"bullion_market/internal/domain/service/pricing"
	"bullion_market/internal/domain/value"
	"bullion_market/pkg/contextx"
	"bullion_market/pkg/errcodes"
	"bullion_market/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

var maxAdjustment = decimal.NewFromInt(100) //nolint:gochecknoglobals

type PriceOracle interface {
	Snapshot(ctx context.Context) oracle.Snapshot
}

// Input лот в формате продавца. ExternalID ключ идемпотентности приёма.
type Input struct {
	ExternalID            string
	Commodity             string
	Company               string
	Grade                 string
	Form                  string
	Quantity              decimal.Decimal
	Purity                *decimal.Decimal
	Adjustment            decimal.Decimal
	PricingMode           value.PricingMode
	UnitPrice             decimal.Decimal
	DeliveryTerms         string
	Origin                string
	Destination           string
	TransportMethod       string
	Frequency             string
	PeriodQuantity        decimal.Decimal
	TotalContractQuantity decimal.Decimal
}

// View лот с ценой за единицу на момент чтения.
type View struct {
	Deal        entity.Deal
	LivePrice   decimal.Decimal
	PriceSource oracle.Source
}

type Service struct {
	repo   repository.DealRepository
	oracle PriceOracle
	now    func() time.Time
}

func NewService(repo repository.DealRepository, o PriceOracle) *Service {
	return &Service{
		repo:   repo,
		oracle: o,
		now:    time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Ingest создаёт лот или обновляет коммерческие поля существующего.
// Количество, остаток и статус уже принятого лота не меняются.
func (s *Service) Ingest(ctx context.Context, in Input) (*entity.Deal, bool, error) {
	deal, err := build(in)
	if err != nil {
		return nil, false, err
	}

	now := s.now()

	existing, err := s.repo.GetByExternalID(ctx, deal.ExternalID)
	switch {
	case err == nil:
		return s.update(ctx, existing, deal, now)
	case domain.HasCode(err, errcodes.DealNotFound):
	default:
		return nil, false, fmt.Errorf("repo.GetByExternalID: %w", err)
	}

	deal.AvailableQuantity = deal.Quantity
	deal.Status = value.DealOpen
	deal.CreatedAt = now
	deal.UpdatedAt = now

	err = s.repo.Create(ctx, deal)
	if domain.HasCode(err, errcodes.AlreadyExists) {
		// Параллельный ingest того же лота успел создать его первым.
		existing, err = s.repo.GetByExternalID(ctx, deal.ExternalID)
		if err != nil {
			return nil, false, fmt.Errorf("repo.GetByExternalID: %w", err)
		}

		return s.update(ctx, existing, deal, now)
	}
	if err != nil {
		return nil, false, fmt.Errorf("repo.Create: %w", err)
	}

	logger(ctx).Info("deal created", "deal_id", deal.ID, "external_id", deal.ExternalID)

	return deal, true, nil
}

func (s *Service) update(ctx context.Context, existing, deal *entity.Deal, now time.Time) (*entity.Deal, bool, error) {
	deal.ID = existing.ID
	deal.Quantity = existing.Quantity
	deal.AvailableQuantity = existing.AvailableQuantity
	deal.Status = existing.Status
	deal.OwnerID = existing.OwnerID
	deal.CreatedAt = existing.CreatedAt
	deal.UpdatedAt = now

	if err := s.repo.UpdateCommercial(ctx, deal); err != nil {
		return nil, false, fmt.Errorf("repo.UpdateCommercial: %w", err)
	}

	logger(ctx).Info("deal updated", "deal_id", deal.ID, "external_id", deal.ExternalID)

	return deal, false, nil
}

func build(in Input) (*entity.Deal, error) {
	externalID := strings.TrimSpace(in.ExternalID)

	switch {
	case externalID == "":
		return nil, invalid(errcodes.ValidationError, "external id is required")
	case strings.TrimSpace(in.Commodity) == "":
		return nil, invalid(errcodes.ValidationError, "commodity is required")
	case strings.TrimSpace(in.Company) == "":
		return nil, invalid(errcodes.ValidationError, "company is required")
	case !in.Quantity.IsPositive():
		return nil, invalid(errcodes.InvalidQuantity, "quantity must be greater than zero")
	case !value.FitsPlaces(in.Quantity, value.QuantityPlaces),
		!value.FitsPlaces(in.PeriodQuantity, value.QuantityPlaces),
		!value.FitsPlaces(in.TotalContractQuantity, value.QuantityPlaces):
		return nil, invalid(errcodes.InvalidQuantity,
			fmt.Sprintf("quantities must have at most %d decimal places", value.QuantityPlaces))
	case !in.PricingMode.Valid():
		return nil, invalid(errcodes.InvalidPricing, fmt.Sprintf("unknown pricing mode %q", in.PricingMode))
	case in.PricingMode == value.PricingFixed && !in.UnitPrice.IsPositive():
		return nil, invalid(errcodes.InvalidPricing, "fixed pricing requires a positive unit price")
	case in.PricingMode == value.PricingFixed && !value.FitsPlaces(in.UnitPrice, value.MoneyPlaces):
		return nil, invalid(errcodes.InvalidPricing, "unit price must be in whole cents")
	case in.Adjustment.Abs().GreaterThanOrEqual(maxAdjustment):
		return nil, invalid(errcodes.InvalidPricing, "adjustment must be within (-100, 100)")
	}

	grade := value.NormalizeGrade(in.Grade)

	purity, ok := value.ResolvePurity(in.Purity, grade)
	if !ok {
		return nil, invalid(errcodes.InvalidGrade, "purity or a known grade is required")
	}

	if !value.ValidPurity(purity) {
		return nil, invalid(errcodes.InvalidGrade, "purity must be within (0, 1]")
	}

	frequency, ok := value.ParseFrequency(in.Frequency)
	if !ok {
		return nil, invalid(errcodes.ValidationError, fmt.Sprintf("unknown frequency %q", in.Frequency))
	}

	unitPrice := in.UnitPrice
	if in.PricingMode == value.PricingDynamic {
		unitPrice = decimal.Zero
	}

	return &entity.Deal{
		ExternalID:            externalID,
		Commodity:             strings.TrimSpace(in.Commodity),
		Company:               strings.TrimSpace(in.Company),
		Grade:                 grade,
		Form:                  in.Form,
		Quantity:              in.Quantity,
		Purity:                purity,
		Adjustment:            in.Adjustment,
		PricingMode:           in.PricingMode,
		UnitPrice:             unitPrice,
		DeliveryTerms:         in.DeliveryTerms,
		Origin:                in.Origin,
		Destination:           in.Destination,
		TransportMethod:       in.TransportMethod,
		Frequency:             frequency,
		PeriodQuantity:        in.PeriodQuantity,
		TotalContractQuantity: in.TotalContractQuantity,
	}, nil
}

func invalid(code failure.ErrorCode, msg string) error {
	return domain.NewError(domain.KindInvalidInput, code, msg)
}

func (s *Service) Get(ctx context.Context, id int64) (*View, error) {
	deal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("repo.GetByID: %w", err)
	}

	view, err := s.view(ctx, deal, s.reference(ctx, deal))
	if err != nil {
		return nil, err
	}

	return &view, nil
}

// List открытые лоты. Справочная цена запрашивается один раз на весь список.
func (s *Service) List(ctx context.Context, limit, offset int) ([]View, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	deals, err := s.repo.ListOpen(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("repo.ListOpen: %w", err)
	}

	var snap *oracle.Snapshot

	views := make([]View, 0, len(deals))
	for i := range deals {
		if snap == nil && deals[i].PricingMode == value.PricingDynamic {
			v := s.oracle.Snapshot(ctx)
			snap = &v
		}

		view, err := s.view(ctx, &deals[i], snap)
		if err != nil {
			logger(ctx).Warn("deal price is not resolvable", "deal_id", deals[i].ID, logx.Error(err))
			continue
		}

		views = append(views, view)
	}

	return views, nil
}

func (s *Service) reference(ctx context.Context, deal *entity.Deal) *oracle.Snapshot {
	if deal.PricingMode != value.PricingDynamic {
		return nil
	}

	snap := s.oracle.Snapshot(ctx)

	return &snap
}

func (s *Service) view(ctx context.Context, deal *entity.Deal, snap *oracle.Snapshot) (View, error) {
	var src snapshotSource
	if snap != nil {
		src = snapshotSource(*snap)
	}

	price, err := pricing.Resolve(ctx, deal, src)
	if err != nil {
		return View{}, fmt.Errorf("pricing.Resolve: %w", err)
	}

	view := View{Deal: *deal, LivePrice: price}
	if snap != nil {
		view.PriceSource = snap.Source
	}

	return view, nil
}

type snapshotSource oracle.Snapshot

func (s snapshotSource) ReferencePrice(context.Context) decimal.Decimal {
	return s.PricePerKg
}
