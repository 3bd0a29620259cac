package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"bullion_market/internal/domain"
	"bullion_market/pkg/contextx"
	"bullion_market/pkg/errcodes"
	"bullion_market/pkg/logx"
)

const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
	headerAPIKey   = "X-Api-Key"
)

// identity читает пользователя, проставленного шлюзом авторизации.
func identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := strconv.ParseInt(r.Header.Get(headerUserID), 10, 64)
		if err != nil || userID <= 0 {
			writeError(ctx, w, domain.NewError(domain.KindUnauthorized, errcodes.Unauthorized,
				"user identity is missing"))
			return
		}

		role := contextx.UserRole(r.Header.Get(headerUserRole))
		if role != contextx.RoleBuyer && role != contextx.RoleAdmin {
			writeError(ctx, w, domain.NewError(domain.KindUnauthorized, errcodes.Unauthorized,
				"user role is missing"))
			return
		}

		ctx = contextx.WithUserID(ctx, contextx.UserID(userID))
		ctx = contextx.WithUserRole(ctx, role)
		ctx = contextx.WithLogger(ctx, logger(ctx).With(slog.Int64(logx.FieldUserID, userID)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireRole(roles ...contextx.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			role, err := contextx.UserRoleFromContext(ctx)
			if err != nil {
				writeError(ctx, w, domain.WrapError(err, domain.KindUnauthorized, errcodes.Unauthorized,
					"user role is missing"))
				return
			}

			if !slices.Contains(roles, role) {
				writeError(ctx, w, domain.NewErrorf(domain.KindForbidden, errcodes.Forbidden,
					"role %s is not allowed", role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// apiKey пропускает сервисные запросы приёма лотов. Пустой ключ закрывает приём.
func apiKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(headerAPIKey)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				writeError(r.Context(), w, domain.NewError(domain.KindUnauthorized, errcodes.Unauthorized,
					"invalid api key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
