package server

import (
	"context"
	"fmt"
	"net/http"

	"bullion_market/internal/domain/entity"
	"bullion_market/internal/domain/service/export"
	"bullion_market/internal/domain/value"
	"bullion_market/pkg/contextx"
	"bullion_market/pkg/errcodes"
	"bullion_market/pkg/httpx/reply"
	"bullion_market/pkg/httpx/req"
	"bullion_market/pkg/lox"
	"bullion_market/pkg/rest"
)

type exportService interface {
	Get(ctx context.Context, id int64) (*entity.PendingExport, error)
	List(ctx context.Context, status value.ExportStatus, limit, offset int) ([]entity.PendingExport, error)
	UpdateParams(ctx context.Context, id int64, patch export.ParamsPatch) (*entity.PendingExport, error)
	Approve(ctx context.Context, id, reviewerID int64) (*entity.PendingExport, error)
	Reject(ctx context.Context, id, reviewerID int64, reason string) (*entity.PendingExport, error)
}

// ExportServer очередь ревью для администраторов.
type ExportServer struct {
	exportService exportService
}

func NewExportServer(exportService exportService) ExportServer {
	return ExportServer{
		exportService: exportService,
	}
}

func (s ExportServer) getV1AdminExports(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit, offset, err := pagination(r)
	if err != nil {
		return err
	}

	status := value.ExportStatus(r.URL.Query().Get("status"))

	exports, err := s.exportService.List(ctx, status, limit, offset)
	if err != nil {
		return fmt.Errorf("exportService.List: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.ExportList{
		Items: lox.Map(exports, func(e entity.PendingExport) rest.Export { return newRESTExport(&e) }),
	})

	return nil
}

func (s ExportServer) getV1AdminExport(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := pathID(r, errcodes.InvalidExportID)
	if err != nil {
		return err
	}

	e, err := s.exportService.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("exportService.Get: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTExport(e))

	return nil
}

func (s ExportServer) patchV1AdminExport(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := pathID(r, errcodes.InvalidExportID)
	if err != nil {
		return err
	}

	var request rest.ExportParamsPatch

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	e, err := s.exportService.UpdateParams(ctx, id, newDomainParamsPatch(request))
	if err != nil {
		return fmt.Errorf("exportService.UpdateParams: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTExport(e))

	return nil
}

func (s ExportServer) postV1AdminExportApprove(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := pathID(r, errcodes.InvalidExportID)
	if err != nil {
		return err
	}

	reviewer, _ := contextx.UserIDFromContext(ctx) //nolint:errcheck

	e, err := s.exportService.Approve(ctx, id, reviewer.Int64())
	if err != nil {
		return fmt.Errorf("exportService.Approve: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTExport(e))

	return nil
}

func (s ExportServer) postV1AdminExportReject(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := pathID(r, errcodes.InvalidExportID)
	if err != nil {
		return err
	}

	var request rest.ExportRejection

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	reviewer, _ := contextx.UserIDFromContext(ctx) //nolint:errcheck

	e, err := s.exportService.Reject(ctx, id, reviewer.Int64(), request.Reason)
	if err != nil {
		return fmt.Errorf("exportService.Reject: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTExport(e))

	return nil
}
