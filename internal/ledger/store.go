// Package ledger holds the current transaction ledger and the sources it is
// loaded from.
package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/dvloznov/finance-coach/internal/domain"
)

// DefaultRecentLimit is the number of rows Recent returns for n <= 0.
const DefaultRecentLimit = 100

// Snapshot is an immutable view of the ledger at one load.
type Snapshot struct {
	// Version increases by one on every Replace. The empty store is version 0.
	Version      uint64               `json:"version"`
	LoadedAt     time.Time            `json:"loaded_at"`
	Source       string               `json:"source,omitempty"`
	Transactions []domain.Transaction `json:"-"`
}

// Store is an in-memory ledger that is safe for concurrent use.
// Readers always get their own copy of the transactions.
type Store struct {
	mu      sync.RWMutex
	current Snapshot
}

// NewStore creates an empty ledger store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current ledger. The returned slice is a copy.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.current
	snap.Transactions = append([]domain.Transaction(nil), s.current.Transactions...)
	return snap
}

// Version returns the version of the current snapshot.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Version
}

// Replace swaps in a new ledger and returns the new snapshot version.
// txns is copied, so the caller may keep using it.
func (s *Store) Replace(source string, txns []domain.Transaction) uint64 {
	rows := append([]domain.Transaction(nil), txns...)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Snapshot{
		Version:      s.current.Version + 1,
		LoadedAt:     time.Now(),
		Source:       source,
		Transactions: rows,
	}
	return s.current.Version
}

// Recent returns up to n transactions, newest first. Rows sharing a date keep
// their ledger order. n <= 0 means DefaultRecentLimit.
func (s *Store) Recent(n int) []domain.Transaction {
	return Recent(s.Snapshot().Transactions, n)
}

// Recent returns up to n of txns sorted newest first without modifying txns.
func Recent(txns []domain.Transaction, n int) []domain.Transaction {
	if n <= 0 {
		n = DefaultRecentLimit
	}

	sorted := append([]domain.Transaction(nil), txns...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
