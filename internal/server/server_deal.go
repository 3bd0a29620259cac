package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"git.appkode.ru/pub/go/failure"

	"bullion_market/internal/domain"
	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/service/deal"
	"bullion_market/internal/domain/service/oracle"
	"bullion_market/pkg/errcodes"
	"bullion_market/pkg/httpx/reply"
	"bullion_market/pkg/httpx/req"
	"bullion_market/pkg/lox"
	"bullion_market/pkg/rest"
)

type dealService interface {
	Ingest(ctx context.Context, in deal.Input) (*entity.Deal, bool, error)
	Get(ctx context.Context, id int64) (*deal.View, error)
	List(ctx context.Context, limit, offset int) ([]deal.View, error)
	Preview(ctx context.Context, req deal.PreviewRequest) (*deal.Preview, error)
	OracleSnapshot(ctx context.Context) oracle.Snapshot
}

// DealServer лоты, предпросмотр цены и справочная цена.
type DealServer struct {
	dealService dealService
}

func NewDealServer(dealService dealService) DealServer {
	return DealServer{
		dealService: dealService,
	}
}

func (s DealServer) putV1IngestDeal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.DealIngest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	d, created, err := s.dealService.Ingest(ctx, newDomainDealInput(request))
	if err != nil {
		return fmt.Errorf("dealService.Ingest: %w", err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	reply.JSON(ctx, w, status, rest.DealIngestResult{
		Deal:    newRESTDeal(*d),
		Created: created,
	})

	return nil
}

func (s DealServer) getV1Deals(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit, offset, err := pagination(r)
	if err != nil {
		return err
	}

	views, err := s.dealService.List(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("dealService.List: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.DealList{Items: lox.Map(views, newRESTDealView)})

	return nil
}

func (s DealServer) getV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := pathID(r, errcodes.InvalidDealID)
	if err != nil {
		return err
	}

	view, err := s.dealService.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("dealService.Get: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDealView(*view))

	return nil
}

func (s DealServer) postV1PricingPreview(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.PricingPreviewRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	preview, err := s.dealService.Preview(ctx, newDomainPreviewRequest(request))
	if err != nil {
		return fmt.Errorf("dealService.Preview: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPreview(preview))

	return nil
}

func (s DealServer) getV1OraclePrice(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	reply.JSON(ctx, w, http.StatusOK, newRESTOraclePrice(s.dealService.OracleSnapshot(ctx)))

	return nil
}

func pathID(r *http.Request, code failure.ErrorCode) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewErrorf(domain.KindInvalidInput, code, "invalid id %q", r.PathValue("id"))
	}

	return id, nil
}

func pagination(r *http.Request) (limit, offset int, err error) {
	query := r.URL.Query()

	if limit, err = queryInt(query.Get("limit")); err != nil {
		return 0, 0, err
	}

	if offset, err = queryInt(query.Get("offset")); err != nil {
		return 0, 0, err
	}

	return limit, offset, nil
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewErrorf(domain.KindInvalidInput, errcodes.ValidationError,
			"invalid pagination value %q", raw)
	}

	return n, nil
}
