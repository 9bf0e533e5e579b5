package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/settlex-hq/settlex-settler/pkg/chainclient"
	"github.com/settlex-hq/settlex-settler/pkg/importer"
	"github.com/settlex-hq/settlex-settler/pkg/logger"
	"github.com/settlex-hq/settlex-settler/pkg/settlement"
	"github.com/settlex-hq/settlex-settler/pkg/store"
	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	svc *settlement.Service,
	chain *chainclient.Client,
	st *store.Store,
	imp *importer.Importer,
	registry *tokens.Registry,
	log logger.Logger,
) http.Handler {
	h := &Handlers{
		svc:      svc,
		chain:    chain,
		store:    st,
		importer: imp,
		registry: registry,
		log:      log,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Settlements.
		r.Post("/settlements", h.RunSettlement)
		r.Post("/settlements/preview", h.PreviewSettlement)
		r.Get("/settlements/status", h.SettlementStatus)

		// CSV import.
		r.Post("/import", h.ImportCSV)

		// History.
		r.Get("/history", h.ListHistory)

		// Templates.
		r.Get("/templates", h.ListTemplates)
		r.Post("/templates", h.SaveTemplate)
		r.Get("/templates/{id}", h.GetTemplate)
		r.Delete("/templates/{id}", h.DeleteTemplate)

		// Employer.
		r.Get("/employer/stats", h.EmployerStats)

		// Tokens.
		r.Get("/tokens", h.ListTokens)
	})

	return r
}
