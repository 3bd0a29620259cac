// Package export очередь ревью покупок перед публикацией проекта на внешней платформе.
//
// Запись создаётся в статусе PENDING и переходит ровно один раз: в EXPORTED
// после успешного вызова платформы или в REJECTED по решению администратора.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/repository"
	"bullion_market/internal/domain/value"
	"bullion_market/internal/metrics"
	"bullion_market/pkg/contextx"
	"bullion_market/pkg/errcodes"
	"bullion_market/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

var (
	DefaultTargetYield  = decimal.NewFromFloat(8.0) //nolint:gochecknoglobals
	MaxMinInvestment    = decimal.NewFromInt(1000)  //nolint:gochecknoglobals
	purityPercentFactor = decimal.NewFromInt(100)   //nolint:gochecknoglobals
)

const (
	DefaultRiskTier = value.RiskMedium

	defaultListLimit = 50
	maxListLimit     = 200
)

// Syndicator клиент внешней платформы финансирования.
type Syndicator interface {
	CreateProject(ctx context.Context, idempotencyKey string, params entity.ExportParams) (string, error)
	UpdateShipmentStatus(ctx context.Context, externalID, status string) error
}

// Notifier сообщает администраторам о новой записи в очереди.
type Notifier interface {
	NotifyExportQueued(ctx context.Context, export *entity.PendingExport) error
}

type Service struct {
	repo       repository.ExportRepository
	syndicator Syndicator
	notifier   Notifier
	metrics    *metrics.Registry
	now        func() time.Time
	newKey     func() string
}

func NewService(repo repository.ExportRepository, syndicator Syndicator) *Service {
	return &Service{
		repo:       repo,
		syndicator: syndicator,
		now:        time.Now,
		newKey:     uuid.NewString,
	}
}

func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) WithMetrics(m *metrics.Registry) *Service {
	s.metrics = m
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Snapshot параметры проекта по умолчанию для покупки.
func Snapshot(deal *entity.Deal, purchase *entity.Purchase) entity.ExportParams {
	minInvestment := decimal.Min(MaxMinInvestment, purchase.TotalPrice)

	destination := deal.Destination
	if purchase.DeliveryLocation != "" {
		destination = purchase.DeliveryLocation
	}

	return entity.ExportParams{
		Name:            fmt.Sprintf("%s – %s #%d", deal.Commodity, deal.Company, purchase.ID),
		RiskTier:        DefaultRiskTier,
		TargetYield:     DefaultTargetYield,
		DurationMonths:  deal.Frequency.DurationMonths(),
		MinInvestment:   minInvestment,
		AmountRequired:  purchase.TotalPrice,
		Description:     description(deal, purchase),
		Origin:          deal.Origin,
		Destination:     destination,
		TransportMethod: deal.TransportMethod,
		MaterialForm:    deal.Form,
		PurityPercent:   deal.Purity.Mul(purityPercentFactor),
	}
}

func description(deal *entity.Deal, purchase *entity.Purchase) string {
	parts := []string{
		fmt.Sprintf("%s kg of %s from %s", purchase.Quantity.String(), deal.Commodity, deal.Company),
	}
	if deal.DeliveryTerms != "" {
		parts = append(parts, "terms: "+deal.DeliveryTerms)
	}
	if deal.IsPeriodic() {
		parts = append(parts, "supply: "+strings.ToLower(deal.Frequency.String()))
	}

	return strings.Join(parts, "; ")
}

// Enqueue создаёт запись PENDING со снимком параметров.
func (s *Service) Enqueue(ctx context.Context, deal *entity.Deal, purchase *entity.Purchase) (*entity.PendingExport, error) {
	now := s.now()

	export := &entity.PendingExport{
		PurchaseID:     purchase.ID,
		DealID:         deal.ID,
		Params:         Snapshot(deal, purchase),
		IdempotencyKey: s.newKey(),
		Status:         value.ExportPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.repo.Create(ctx, export)
	s.metrics.ObserveExport("enqueue", err)
	if err != nil {
		return nil, fmt.Errorf("repo.Create: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyExportQueued(ctx, export); err != nil {
			logger(ctx).Warn("export notification failed", "export_id", export.ID, logx.Error(err))
		}
	}

	return export, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*entity.PendingExport, error) {
	export, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("repo.GetByID: %w", err)
	}

	return export, nil
}

// List записи с указанным статусом; пустой статус означает все записи.
func (s *Service) List(ctx context.Context, status value.ExportStatus, limit, offset int) ([]entity.PendingExport, error) {
	if status != "" && !status.Valid() {
		return nil, domain.NewErrorf(domain.KindInvalidInput, errcodes.ValidationError,
			"unknown export status %q", status)
	}

	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	exports, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("repo.List: %w", err)
	}

	return exports, nil
}

// Approve публикует проект на платформе и переводит запись в EXPORTED.
// Повторный вызов платформы с тем же ключом идемпотентности возвращает тот же проект,
// поэтому из двух одновременных одобрений запись фиксирует только первое.
func (s *Service) Approve(ctx context.Context, id, reviewerID int64) (*entity.PendingExport, error) {
	export, err := s.pending(ctx, id)
	if err != nil {
		s.metrics.ObserveExport("approve", err)
		return nil, err
	}

	externalID, err := s.syndicator.CreateProject(ctx, export.IdempotencyKey, export.Params)
	if err != nil {
		logger(ctx).Error("create project failed", "export_id", id, logx.Error(err))

		err = domain.WrapError(err, domain.KindUpstream, errcodes.UpstreamUnavailable,
			"financing platform is unavailable")
		s.metrics.ObserveExport("approve", err)

		return nil, err
	}

	now := s.now()
	export.Status = value.ExportExported
	export.ExternalID = externalID
	export.ReviewedBy = &reviewerID
	export.ReviewedAt = &now
	export.UpdatedAt = now

	err = s.repo.MarkExported(ctx, export)
	s.metrics.ObserveExport("approve", err)
	if err != nil {
		return nil, fmt.Errorf("repo.MarkExported: %w", err)
	}

	logger(ctx).Info("export approved", "export_id", id, "external_id", externalID, "reviewer_id", reviewerID)

	return export, nil
}

// Reject отклоняет запись без обращения к платформе.
func (s *Service) Reject(ctx context.Context, id, reviewerID int64, reason string) (*entity.PendingExport, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewError(domain.KindInvalidInput, errcodes.RejectionReason,
			"rejection reason is required")
	}

	export, err := s.pending(ctx, id)
	if err != nil {
		s.metrics.ObserveExport("reject", err)
		return nil, err
	}

	now := s.now()
	export.Status = value.ExportRejected
	export.RejectionReason = reason
	export.ReviewedBy = &reviewerID
	export.ReviewedAt = &now
	export.UpdatedAt = now

	err = s.repo.MarkRejected(ctx, export)
	s.metrics.ObserveExport("reject", err)
	if err != nil {
		return nil, fmt.Errorf("repo.MarkRejected: %w", err)
	}

	return export, nil
}

func (s *Service) pending(ctx context.Context, id int64) (*entity.PendingExport, error) {
	export, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("repo.GetByID: %w", err)
	}

	if !export.IsPending() {
		return nil, domain.NewErrorf(domain.KindConflict, errcodes.AlreadyProcessed,
			"export %d is already %s", id, export.Status)
	}

	return export, nil
}
