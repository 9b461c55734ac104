/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zap request logging (logger.Middleware), request-scoped logger
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the web client
  5. Cache:      Write requests drop cached dashboard/reminders

ROUTE GROUPS:
  /api/biens/*         Properties
  /api/locataires/*    Tenants and leases
  /api/paiements/*     Payments
  /api/charges/*       Operating charges
  /api/entretiens/*    Maintenance
  /api/contrats/*      Contract documents
  /api/dashboard, /api/arrieres, /api/rappels, /api/rapports
  /api/export/*, /api/import/*, /api/reset, /api/demo/*
  /                    Endpoint index

SECURITY NOTE:
  No authentication middleware. The API is meant to run behind an
  authenticating reverse proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/soprimec/rental-engine/logger"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, l *zap.Logger, allowedOrigins []string) *chi.Mux {
	if l == nil {
		l = zap.NewNop()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logger.Middleware(l))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(h.invalidateCache)

		r.Route("/biens", func(r chi.Router) {
			r.Get("/", h.ListProperties)
			r.Post("/", h.CreateProperty)
			r.Delete("/{code}", h.DeleteProperty)
		})

		r.Route("/locataires", func(r chi.Router) {
			r.Get("/", h.ListTenants)
			r.Post("/", h.CreateTenant)
			r.Get("/{code}", h.GetTenant)
			r.Delete("/{code}", h.DeleteTenant)
		})

		r.Route("/paiements", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Delete("/{numero}", h.DeletePayment)
		})

		r.Route("/charges", func(r chi.Router) {
			r.Get("/", h.ListCharges)
			r.Post("/", h.CreateCharge)
			r.Delete("/{numero}", h.DeleteCharge)
		})

		r.Route("/entretiens", func(r chi.Router) {
			r.Get("/", h.ListMaintenance)
			r.Post("/", h.CreateMaintenance)
			r.Delete("/{numero}", h.DeleteMaintenance)
		})

		r.Route("/contrats", func(r chi.Router) {
			r.Post("/{code}", h.UploadContract)
			r.Get("/{code}", h.GetContract)
			r.Delete("/{code}", h.DeleteContract)
		})

		// Read path
		r.Get("/dashboard", h.Dashboard)
		r.Get("/arrieres", h.ListArrears)
		r.Get("/arrieres/{code}", h.GetArrears)
		r.Get("/rappels", h.Reminders)
		r.Get("/rapports/{periode}", h.PeriodReport)

		// Admin
		r.Get("/export/json", h.ExportJSON)
		r.Post("/import/json", h.ImportJSON)
		r.Get("/export/csv", h.ExportCSV)
		r.Post("/reset", h.Reset)
		r.Post("/demo/seed", h.SeedDemo)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Rental Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Rental Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/dashboard">/api/dashboard</a> - Portfolio summary</li>
<li><a href="/api/biens">/api/biens</a> - Properties</li>
<li><a href="/api/locataires">/api/locataires</a> - Tenants</li>
<li><a href="/api/arrieres">/api/arrieres</a> - Arrears</li>
<li><a href="/api/rappels">/api/rappels</a> - Reminders</li>
</ul>
</body>
</html>`))
	})

	return r
}
