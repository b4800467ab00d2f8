package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmadesk/pharmadesk/internal/auth"
	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/observability"
	"github.com/pharmadesk/pharmadesk/internal/orders"
	"github.com/pharmadesk/pharmadesk/internal/sales"
)

// RouterParams collects everything NewRouter needs to assemble the HTTP surface.
type RouterParams struct {
	Middleware []func(http.Handler) http.Handler
	Metrics    *observability.Metrics

	AuthService *auth.Service

	AuthHandler    *auth.Handler
	CatalogHandler *catalog.Handler
	OrdersHandler  *orders.Handler
	SalesHandler   *sales.Handler
}

// NewRouter wires the middleware stack and mounts every API group under /api/v1.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range p.Middleware {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			p.AuthHandler.MountRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(p.AuthService.Middleware)

			r.Route("/medicines", func(r chi.Router) {
				p.CatalogHandler.MountRoutes(r)
			})
			r.Route("/orders", func(r chi.Router) {
				p.OrdersHandler.MountRoutes(r)
			})
			r.Route("/sales", func(r chi.Router) {
				p.SalesHandler.MountRoutes(r)
			})
		})
	})

	return r
}
