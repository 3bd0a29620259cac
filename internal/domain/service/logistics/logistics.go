// Package logistics статус доставки покупок и повторная отгрузка по периодическим контрактам.
package logistics

import (
	"context"
	"fmt"
	"time"

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

type DealReader interface {
	GetByID(ctx context.Context, id int64) (*entity.Deal, error)
}

type ExportReader interface {
	GetByPurchaseID(ctx context.Context, purchaseID int64) (*entity.PendingExport, error)
}

type ExportEnqueuer interface {
	Enqueue(ctx context.Context, deal *entity.Deal, purchase *entity.Purchase) (*entity.PendingExport, error)
}

type ShipmentUpdater interface {
	UpdateShipmentStatus(ctx context.Context, externalID, status string) error
}

type Update struct {
	Status     value.LogisticsStatus
	Carrier    string
	TrackingID string
}

type Service struct {
	purchases repository.PurchaseRepository
	deals     DealReader
	exports   ExportReader
	enqueuer  ExportEnqueuer
	shipments ShipmentUpdater
	metrics   *metrics.Registry
	now       func() time.Time
}

func NewService(
	purchases repository.PurchaseRepository,
	deals DealReader,
	exports ExportReader,
	enqueuer ExportEnqueuer,
	shipments ShipmentUpdater,
) *Service {
	return &Service{
		purchases: purchases,
		deals:     deals,
		exports:   exports,
		enqueuer:  enqueuer,
		shipments: shipments,
		now:       time.Now,
	}
}

func (s *Service) WithMetrics(m *metrics.Registry) *Service {
	s.metrics = m
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Get(ctx context.Context, purchaseID int64) (*entity.Purchase, error) {
	purchase, err := s.purchases.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("purchases.GetByID: %w", err)
	}

	return purchase, nil
}

// UpdateLogistics перезаписывает статус и данные перевозчика.
// Первый переход в DELIVERED по периодическому контракту запускает повторную отгрузку.
// Запись условная по прочитанному статусу, поэтому переход в DELIVERED
// засчитывается ровно одному из параллельных вызовов.
func (s *Service) UpdateLogistics(ctx context.Context, purchaseID int64, upd Update) (*entity.Purchase, error) {
	if !upd.Status.Valid() {
		return nil, domain.NewErrorf(domain.KindInvalidInput, errcodes.InvalidLogisticsStatus,
			"unknown logistics status %q", upd.Status)
	}

	for attempt := 1; ; attempt++ {
		purchase, previous, err := s.applyLogistics(ctx, purchaseID, upd)
		if domain.HasCode(err, errcodes.LogisticsConflict) && attempt < maxLogisticsAttempts {
			continue
		}
		if err != nil {
			return nil, err
		}

		logger(ctx).Info("logistics updated",
			"purchase_id", purchaseID,
			"from", previous,
			"to", upd.Status,
		)

		if upd.Status == value.LogisticsDelivered && previous != value.LogisticsDelivered {
			s.repush(context.WithoutCancel(ctx), purchase)
		}

		return purchase, nil
	}
}

const maxLogisticsAttempts = 5

func (s *Service) applyLogistics(
	ctx context.Context, purchaseID int64, upd Update,
) (*entity.Purchase, value.LogisticsStatus, error) {
	purchase, err := s.purchases.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, "", fmt.Errorf("purchases.GetByID: %w", err)
	}

	previous := purchase.Status
	now := s.now()

	purchase.Status = upd.Status
	purchase.Carrier = upd.Carrier
	purchase.TrackingID = upd.TrackingID
	purchase.UpdatedAt = now

	switch upd.Status {
	case value.LogisticsShipped:
		if purchase.ShippedAt == nil {
			purchase.ShippedAt = &now
		}
	case value.LogisticsDelivered:
		if purchase.DeliveredAt == nil {
			purchase.DeliveredAt = &now
		}
	}

	if err := s.purchases.UpdateLogistics(ctx, purchase, previous); err != nil {
		return nil, "", fmt.Errorf("purchases.UpdateLogistics: %w", err)
	}

	return purchase, previous, nil
}

const (
	stepShipment = "shipment_status"
	stepTranche  = "next_tranche"
	stepExport   = "export_enqueue"
)

// repush отгружает следующий транш периодического контракта.
//
// Следующий транш создаётся без проверки баланса покупателя и остатка лота:
// контракт на весь объём уже согласован, и платформа пересылает поставку
// на основании доставки предыдущего транша. Ошибки шагов только логируются.
func (s *Service) repush(ctx context.Context, delivered *entity.Purchase) {
	log := logger(ctx).With("purchase_id", delivered.ID)

	deal, err := s.deals.GetByID(ctx, delivered.DealID)
	if err != nil {
		log.Error("repush: load deal", logx.Error(err))
		return
	}

	if !deal.IsPeriodic() {
		return
	}

	s.markArrived(ctx, delivered)

	next := delivered.NextTranche(s.now())

	err = s.purchases.Create(ctx, next)
	s.metrics.ObserveRepush(stepTranche, err)
	if err != nil {
		log.Error("repush: create next tranche", logx.Error(err))
		return
	}

	_, err = s.enqueuer.Enqueue(ctx, deal, next)
	s.metrics.ObserveRepush(stepExport, err)
	if err != nil {
		log.Error("repush: enqueue export", "next_purchase_id", next.ID, logx.Error(err))
		return
	}

	log.Info("repush completed", "next_purchase_id", next.ID, "frequency", deal.Frequency)
}

func (s *Service) markArrived(ctx context.Context, delivered *entity.Purchase) {
	log := logger(ctx).With("purchase_id", delivered.ID)

	export, err := s.exports.GetByPurchaseID(ctx, delivered.ID)
	if err != nil {
		if domain.HasCode(err, errcodes.ExportNotFound) {
			log.Info("repush: no export for purchase, shipment status skipped")
			return
		}

		s.metrics.ObserveRepush(stepShipment, err)
		log.Error("repush: load export", logx.Error(err))

		return
	}

	if export.ExternalID == "" {
		log.Info("repush: export is not published, shipment status skipped", "export_id", export.ID)
		return
	}

	err = s.shipments.UpdateShipmentStatus(ctx, export.ExternalID, value.ShipmentArrived)
	s.metrics.ObserveRepush(stepShipment, err)
	if err != nil {
		log.Error("repush: update shipment status", "external_id", export.ExternalID, logx.Error(err))
	}
}
