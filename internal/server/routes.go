package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bullion_market/pkg/contextx"
)

func (s Server) RegisterRoutes(r chi.Router) { //nolint:funlen
	r.Route("/v1", func(r chi.Router) {
		// сервисная зона
		r.With(apiKey(s.ingestAPIKey)).Put("/ingest/deals", handler(s.putV1IngestDeal))

		r.Group(func(r chi.Router) {
			r.Use(identity)

			r.Get("/deals", handler(s.getV1Deals))
			r.Get("/deals/{id}", handler(s.getV1Deal))
			r.Post("/pricing/preview", handler(s.postV1PricingPreview))
			r.Get("/oracle/price", handler(s.getV1OraclePrice))

			r.With(
				requireRole(contextx.RoleBuyer),
				s.limiter.middleware,
				s.replay.middleware,
			).Post("/deals/{id}/purchases", handler(s.postV1DealPurchase))

			r.With(requireRole(contextx.RoleBuyer, contextx.RoleAdmin)).
				Get("/purchases/{id}", handler(s.getV1Purchase))

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireRole(contextx.RoleAdmin))

				r.Put("/purchases/{id}/logistics", handler(s.putV1AdminPurchaseLogistics))

				r.Get("/exports", handler(s.getV1AdminExports))
				r.Get("/exports/{id}", handler(s.getV1AdminExport))
				r.Patch("/exports/{id}", handler(s.patchV1AdminExport))
				r.Post("/exports/{id}/approve", handler(s.postV1AdminExportApprove))
				r.Post("/exports/{id}/reject", handler(s.postV1AdminExportReject))
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			writeError(r.Context(), w, err)
		}
	}
}
