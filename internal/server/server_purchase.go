package server

import (
	"context"
	"fmt"
	"net/http"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/service/logistics"
	"bullion_market/internal/domain/service/settlement"
	"bullion_market/internal/domain/value"
	"bullion_market/pkg/contextx"
	"bullion_market/pkg/errcodes"
	"bullion_market/pkg/httpx/reply"
	"bullion_market/pkg/httpx/req"
	"bullion_market/pkg/rest"
)

type settlementService interface {
	Settle(ctx context.Context, req settlement.PurchaseRequest) (*settlement.Result, error)
}

type logisticsService interface {
	Get(ctx context.Context, purchaseID int64) (*entity.Purchase, error)
	UpdateLogistics(ctx context.Context, purchaseID int64, upd logistics.Update) (*entity.Purchase, error)
}

// PurchaseServer покупки и логистика.
type PurchaseServer struct {
	settlementService settlementService
	logisticsService  logisticsService
}

func NewPurchaseServer(settlementService settlementService, logisticsService logisticsService) PurchaseServer {
	return PurchaseServer{
		settlementService: settlementService,
		logisticsService:  logisticsService,
	}
}

func (s PurchaseServer) postV1DealPurchase(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	dealID, err := pathID(r, errcodes.InvalidDealID)
	if err != nil {
		return err
	}

	userID, err := contextx.UserIDFromContext(ctx)
	if err != nil {
		return domain.WrapError(err, domain.KindUnauthorized, errcodes.Unauthorized, "user identity is missing")
	}

	var request rest.PurchaseRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	result, err := s.settlementService.Settle(ctx, settlement.PurchaseRequest{
		DealID:           dealID,
		BuyerID:          userID.Int64(),
		Quantity:         request.Quantity,
		DeliveryLocation: request.DeliveryLocation,
		AgreementTerms:   request.AgreementTerms,
	})
	if err != nil {
		return fmt.Errorf("settlementService.Settle: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTPurchaseResult(result))

	return nil
}

// getV1Purchase покупатель видит только свои покупки, администратор любые.
func (s PurchaseServer) getV1Purchase(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := pathID(r, errcodes.InvalidPurchaseID)
	if err != nil {
		return err
	}

	purchase, err := s.logisticsService.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("logisticsService.Get: %w", err)
	}

	role, _ := contextx.UserRoleFromContext(ctx) //nolint:errcheck
	userID, _ := contextx.UserIDFromContext(ctx) //nolint:errcheck

	if role != contextx.RoleAdmin && purchase.BuyerID != userID.Int64() {
		return domain.NewErrorf(domain.KindNotFound, errcodes.PurchaseNotFound, "purchase %d not found", id)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPurchase(purchase))

	return nil
}

func (s PurchaseServer) putV1AdminPurchaseLogistics(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := pathID(r, errcodes.InvalidPurchaseID)
	if err != nil {
		return err
	}

	var request rest.LogisticsUpdate

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	purchase, err := s.logisticsService.UpdateLogistics(ctx, id, logistics.Update{
		Status:     value.LogisticsStatus(request.Status),
		Carrier:    request.Carrier,
		TrackingID: request.TrackingID,
	})
	if err != nil {
		return fmt.Errorf("logisticsService.UpdateLogistics: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPurchase(purchase))

	return nil
}
