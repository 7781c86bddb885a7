// Package insights serves scoring and spending reports over the current
// ledger snapshot, caching each report per snapshot version.
package insights

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/dvloznov/finance-coach/internal/analytics"
	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/ledger"
	"github.com/dvloznov/finance-coach/internal/logger"
	"github.com/dvloznov/finance-coach/internal/scoring"
)

// ScoringReport is the engine output for one snapshot.
type ScoringReport struct {
	Version uint64 `json:"version"`
	scoring.ScoringOutput
}

// SubscriptionReport lists detected subscriptions with their totals.
type SubscriptionReport struct {
	Version       uint64                 `json:"version"`
	Subscriptions []scoring.Subscription `json:"subscriptions"`
	scoring.Totals
}

// SpendingReport is the spending overview for one snapshot.
type SpendingReport struct {
	Version uint64 `json:"version"`
	analytics.Summary
}

// AnomalyReport lists flagged debits.
type AnomalyReport struct {
	Version   uint64              `json:"version"`
	Anomalies []analytics.Anomaly `json:"anomalies"`
	Count     int                 `json:"count"`
}

// GoalReport is goal progress for one snapshot.
type GoalReport struct {
	Version uint64 `json:"version"`
	analytics.Goal
}

// TransactionsReport is a page of the most recent transactions.
type TransactionsReport struct {
	Version      uint64               `json:"version"`
	Transactions []domain.Transaction `json:"transactions"`
	Count        int                  `json:"count"`
}

// NewCache creates the report cache. Every report costs 1, so maxCost is the
// number of reports kept.
func NewCache(maxCost int64) (*ristretto.Cache, error) {
	if maxCost <= 0 {
		return nil, fmt.Errorf("NewCache: max cost must be positive, got %d", maxCost)
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCost * 10, // number of keys to track frequency of
		MaxCost:     maxCost,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("NewCache: %w", err)
	}
	return cache, nil
}

// Service computes reports from the ledger store. Cached reports are shared
// between callers and must be treated as read-only.
type Service struct {
	store  *ledger.Store
	engine *scoring.Engine
	cache  *ristretto.Cache
}

// NewService creates a service. cache may be nil to disable caching.
func NewService(store *ledger.Store, engine *scoring.Engine, cache *ristretto.Cache) *Service {
	return &Service{store: store, engine: engine, cache: cache}
}

// Invalidate drops every cached report.
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Scoring returns the merchant roster and annotated transactions.
func (s *Service) Scoring(ctx context.Context) ScoringReport {
	snap := s.store.Snapshot()
	return ScoringReport{Version: snap.Version, ScoringOutput: s.scoringOutput(ctx, snap)}
}

func (s *Service) scoringOutput(ctx context.Context, snap ledger.Snapshot) scoring.ScoringOutput {
	return cached(ctx, s, "scoring", snap.Version, func() scoring.ScoringOutput {
		return s.engine.Run(snap.Transactions)
	})
}

// Subscriptions returns the subscription summary, reusing the cached roster
// when there is one.
func (s *Service) Subscriptions(ctx context.Context) SubscriptionReport {
	snap := s.store.Snapshot()
	return cached(ctx, s, "subscriptions", snap.Version, func() SubscriptionReport {
		out := s.scoringOutput(ctx, snap)
		subs := s.engine.Subscriptions(out.Merchants, snap.Transactions)
		return SubscriptionReport{
			Version:       snap.Version,
			Subscriptions: subs,
			Totals:        scoring.SummarizeSubscriptions(subs),
		}
	})
}

// Spending returns the spending overview.
func (s *Service) Spending(ctx context.Context) SpendingReport {
	snap := s.store.Snapshot()
	return cached(ctx, s, "spending", snap.Version, func() SpendingReport {
		return SpendingReport{Version: snap.Version, Summary: analytics.Summarize(snap.Transactions)}
	})
}

// Anomalies returns the flagged debits.
func (s *Service) Anomalies(ctx context.Context) AnomalyReport {
	snap := s.store.Snapshot()
	return cached(ctx, s, "anomalies", snap.Version, func() AnomalyReport {
		found := analytics.DetectAnomalies(snap.Transactions)
		return AnomalyReport{Version: snap.Version, Anomalies: found, Count: len(found)}
	})
}

// Goal returns progress against a monthly spending target. Goals are
// parameterized per request and are not cached.
func (s *Service) Goal(ctx context.Context, name string, target float64, category string) GoalReport {
	snap := s.store.Snapshot()
	return GoalReport{Version: snap.Version, Goal: analytics.GoalStatus(snap.Transactions, name, target, category)}
}

// Transactions returns up to limit transactions, newest first.
func (s *Service) Transactions(ctx context.Context, limit int) TransactionsReport {
	snap := s.store.Snapshot()
	recent := ledger.Recent(snap.Transactions, limit)
	return TransactionsReport{Version: snap.Version, Transactions: recent, Count: len(recent)}
}

// cached returns the report stored under name for version, computing and
// storing it on a miss.
func cached[T any](ctx context.Context, s *Service, name string, version uint64, compute func() T) T {
	log := logger.FromContext(ctx).With().Str("report", name).Uint64("version", version).Logger()

	key := fmt.Sprintf("%s:v%d", name, version)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if report, ok := v.(T); ok {
				log.Debug().Bool("cache_hit", true).Msg("Serving report")
				return report
			}
		}
	}

	report := compute()
	if s.cache != nil {
		s.cache.Set(key, report, 1)
		s.cache.Wait()
	}
	log.Debug().Bool("cache_hit", false).Msg("Computed report")
	return report
}
