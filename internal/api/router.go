// Package api wires the HTTP handlers into a chi router.
package api

import (
	"net/http"

	"github.com/dvloznov/finance-coach/internal/api/handlers"
	"github.com/dvloznov/finance-coach/internal/api/middleware"
	"github.com/dvloznov/finance-coach/internal/insights"
	"github.com/dvloznov/finance-coach/internal/jobs"
	"github.com/dvloznov/finance-coach/internal/ledger"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Deps are the services the router exposes.
type Deps struct {
	Store       *ledger.Store
	Insights    *insights.Service
	Publisher   jobs.Publisher
	Refresher   handlers.Refresher
	JobStore    jobs.JobStore
	SourceName  string
	CORSOrigins []string
	Log         zerolog.Logger
}

// NewRouter builds the HTTP routes.
func NewRouter(d Deps) *chi.Mux {
	insightsHandler := handlers.NewInsightsHandler(d.Insights, d.Log)
	ledgerHandler := handlers.NewLedgerHandler(d.Store, d.Publisher, d.Refresher, d.SourceName, d.Log)
	jobsHandler := handlers.NewJobsHandler(d.JobStore, d.Log)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.CORS(d.CORSOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", handlers.Health(d.Store))

	r.Route("/api", func(r chi.Router) {
		r.Get("/transactions", insightsHandler.Transactions)
		r.Get("/scoring", insightsHandler.Scoring)
		r.Get("/insights/subscriptions", insightsHandler.Subscriptions)
		r.Get("/insights/spending", insightsHandler.Spending)
		r.Get("/anomalies", insightsHandler.Anomalies)
		r.Get("/goals", insightsHandler.Goal)

		r.Get("/ledger", ledgerHandler.Status)
		r.Post("/ledger/refresh", ledgerHandler.Refresh)

		r.Get("/jobs", jobsHandler.ListJobs)
		r.Get("/jobs/{id}", jobsHandler.GetJob)
	})

	return r
}
