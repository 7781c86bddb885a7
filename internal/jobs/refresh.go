package jobs

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-coach/internal/logger"
)

// Refresher reloads the ledger and returns the new snapshot version.
type Refresher interface {
	Refresh(ctx context.Context) (uint64, error)
}

// NewRefreshHandler returns a handler that runs refresh jobs through r.
// onSuccess, if not nil, runs after each successful refresh.
func NewRefreshHandler(r Refresher, onSuccess func(version uint64)) JobHandler {
	return func(ctx context.Context, job Job) error {
		refresh, ok := job.(*RefreshLedgerJob)
		if !ok {
			return fmt.Errorf("refresh handler: unexpected job type %s", job.GetType())
		}

		log := logger.FromContext(ctx).With().
			Str("job_id", refresh.JobID).
			Str("trigger", refresh.Trigger).
			Int("attempt", refresh.RetryCount+1).
			Logger()

		version, err := r.Refresh(logger.WithContext(ctx, log))
		if err != nil {
			log.Error().Err(err).Msg("Ledger refresh failed")
			return err
		}

		refresh.Version = version
		if onSuccess != nil {
			onSuccess(version)
		}
		return nil
	}
}
