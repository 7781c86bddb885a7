package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/logger"
)

// Refresher reloads the store from a source. Refreshes are serialized, so a
// slow load can never replace the result of a later one.
type Refresher struct {
	mu     sync.Mutex
	store  *Store
	source Source
}

// NewRefresher creates a refresher that loads source into store.
func NewRefresher(store *Store, source Source) *Refresher {
	return &Refresher{store: store, source: source}
}

// Source returns the source the refresher loads from.
func (r *Refresher) Source() Source {
	return r.source
}

// Refresh loads the full ledger from the source, validates it and swaps it
// into the store. On any error the current snapshot stays in place.
func (r *Refresher) Refresh(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logger.FromContext(ctx)

	txns, err := r.source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("Refresh: load from %s: %w", r.source.Name(), err)
	}
	if err := domain.ValidateLedger(txns); err != nil {
		return 0, fmt.Errorf("Refresh: validate %s: %w", r.source.Name(), err)
	}

	version := r.store.Replace(r.source.Name(), txns)
	log.Info().
		Str("source", r.source.Name()).
		Int("transactions", len(txns)).
		Uint64("version", version).
		Msg("Ledger refreshed")

	return version, nil
}
