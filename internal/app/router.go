package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/quartershq/quarters/internal/accounting/accounts"
	"github.com/quartershq/quarters/internal/accounting/bills"
	"github.com/quartershq/quarters/internal/accounting/journals"
	"github.com/quartershq/quarters/internal/banking"
	"github.com/quartershq/quarters/internal/observability"
	"github.com/quartershq/quarters/internal/payouts"
	"github.com/quartershq/quarters/internal/reconciliation"
	"github.com/quartershq/quarters/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger                *slog.Logger
	Config                *Config
	AccountsHandler       *accounts.Handler
	JournalsHandler       *journals.Handler
	BillsHandler          *bills.Handler
	BankingHandler        *banking.Handler
	ReconciliationHandler *reconciliation.Handler
	PayoutsHandler        *payouts.Handler
	JobHandler            *jobs.Handler
	Metrics               *observability.Metrics
}

// NewRouter constructs the chi.Router with Quarters defaults. Everything
// under the tenant group requires the org header; health, metrics and job
// observability sit outside it.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Group(func(r chi.Router) {
		r.Use(OrgContext)

		r.Route("/accounting", func(r chi.Router) {
			if params.AccountsHandler != nil {
				r.Route("/accounts", params.AccountsHandler.MountRoutes)
			}
			if params.JournalsHandler != nil {
				r.Route("/journals", params.JournalsHandler.MountRoutes)
			}
			if params.BillsHandler != nil {
				r.Route("/bills", params.BillsHandler.MountRoutes)
			}
			if params.ReconciliationHandler != nil {
				r.Route("/reconciliations", params.ReconciliationHandler.MountRoutes)
			}
		})

		if params.BankingHandler != nil {
			r.Route("/banking/accounts", params.BankingHandler.MountRoutes)
		}

		if params.PayoutsHandler != nil {
			r.Route("/payouts", func(r chi.Router) {
				r.Route("/owner-statements", params.PayoutsHandler.MountStatementRoutes)
				r.Route("/batches", params.PayoutsHandler.MountBatchRoutes)
			})
		}
	})

	return r
}
