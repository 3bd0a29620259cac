package server

import (
	"context"
	"net/http"

	"bullion_market/internal/domain"
	"bullion_market/pkg/contextx"
	"bullion_market/pkg/httpx/reply"
	"bullion_market/pkg/logx"
	"bullion_market/pkg/rest"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// writeError отвечает по виду доменной ошибки; прочие ошибки отдаются в reply.Error.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	appErr, ok := domain.AsAppError(err)
	if !ok {
		reply.Error(ctx, w, err)
		return
	}

	status := statusForKind(appErr.Kind)
	if status >= http.StatusInternalServerError {
		logger(ctx).Error("request failed", logx.Error(err))
	} else {
		logger(ctx).Warn("request rejected", logx.Error(err))
	}

	reply.JSON(ctx, w, status, rest.Error{
		Code:      rest.ErrorCode(appErr.Code),
		Message:   appErr.Message,
		SupportID: supportID(ctx),
	})
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case domain.KindUpstream:
		return http.StatusBadGateway
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func supportID(ctx context.Context) string {
	traceID, err := contextx.TraceIDFromContext(ctx)
	if err != nil {
		return "unsupported"
	}

	return traceID.String()
}
