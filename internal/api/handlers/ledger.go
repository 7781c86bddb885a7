package handlers

import (
	"context"
	"net/http"

	"github.com/dvloznov/finance-coach/internal/api/middleware"
	"github.com/dvloznov/finance-coach/internal/jobs"
	"github.com/dvloznov/finance-coach/internal/ledger"
	"github.com/rs/zerolog"
)

// Refresher reloads the ledger synchronously.
type Refresher interface {
	Refresh(ctx context.Context) (uint64, error)
}

// LedgerHandler reports on and refreshes the ledger snapshot.
type LedgerHandler struct {
	store     *ledger.Store
	publisher jobs.Publisher
	refresher Refresher
	source    string
	log       zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler. source names the configured
// ledger source on queued jobs.
func NewLedgerHandler(store *ledger.Store, publisher jobs.Publisher, refresher Refresher, source string, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		store:     store,
		publisher: publisher,
		refresher: refresher,
		source:    source,
		log:       log,
	}
}

// Status handles GET /api/ledger
func (h *LedgerHandler) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":      snap.Version,
		"loaded_at":    snap.LoadedAt,
		"source":       snap.Source,
		"transactions": len(snap.Transactions),
	})
}

// Refresh handles POST /api/ledger/refresh. By default it queues a refresh
// job and answers 202; with ?wait=true it reloads inline.
func (h *LedgerHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Query().Get("wait") == "true" {
		version, err := h.refresher.Refresh(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("Inline ledger refresh failed")
			middleware.WriteError(w, http.StatusBadGateway, "Failed to load ledger from source")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"version": version,
			"status":  jobs.JobStatusCompleted,
		})
		return
	}

	job := &jobs.RefreshLedgerJob{
		Trigger: "api",
		Source:  h.source,
	}
	if err := h.publisher.PublishRefresh(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue refresh job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue refresh job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Msg("Ledger refresh queued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(jobs.JobStatusPending),
	})
}
