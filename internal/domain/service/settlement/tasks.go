package settlement

import (
	"context"
	"fmt"

	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/value"
	"bullion_market/pkg/logx"
)

const (
	taskExport    = "export_enqueue"
	taskAgreement = "agreement_draft"
	taskEvent     = "settled_event"
)

// afterCommit запускает побочные действия независимо друг от друга.
// Ошибка или паника одного из них только логируется.
func (s *Service) afterCommit(ctx context.Context, deal *entity.Deal, result *Result, terms string) {
	purchase := result.Purchase

	s.runTask(ctx, taskExport, purchase.ID, func(ctx context.Context) error {
		_, err := s.exports.Enqueue(ctx, deal, purchase)
		return err
	})

	if terms != "" {
		s.runTask(ctx, taskAgreement, purchase.ID, func(ctx context.Context) error {
			return s.agreements.Create(ctx, &entity.Agreement{
				DealID:     deal.ID,
				PurchaseID: purchase.ID,
				BuyerID:    purchase.BuyerID,
				Terms:      terms,
				Status:     value.AgreementDraft,
				CreatedAt:  s.now(),
			})
		})
	}

	if s.events != nil {
		s.runTask(ctx, taskEvent, purchase.ID, func(ctx context.Context) error {
			return s.events.PublishSettled(ctx, SettledEvent{
				PurchaseID: purchase.ID,
				DealID:     deal.ID,
				BuyerID:    purchase.BuyerID,
				Quantity:   purchase.Quantity,
				UnitPrice:  purchase.UnitPrice,
				TotalPrice: purchase.TotalPrice,
				SoldOut:    result.SoldOut,
				SettledAt:  purchase.CreatedAt,
			})
		})
	}
}

func (s *Service) runTask(ctx context.Context, name string, purchaseID int64, fn func(context.Context) error) {
	var err error

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}

		s.metrics.ObserveTask(name, err)

		if err != nil {
			logger(ctx).Error("post-commit task failed",
				"task", name,
				"purchase_id", purchaseID,
				logx.Error(err),
			)
		}
	}()

	err = fn(ctx)
}
