package analytics

import (
	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/stats"
)

// GoalTrend describes recent spend relative to the long-run monthly average.
type GoalTrend string

const (
	GoalImproving GoalTrend = "improving"
	GoalWorsening GoalTrend = "worsening"
	GoalStable    GoalTrend = "stable"
)

// GoalState is whether the monthly average is within the target.
type GoalState string

const (
	OnTrack  GoalState = "on-track"
	OffTrack GoalState = "off-track"
)

// Goal is progress against a monthly spending target.
type Goal struct {
	Name            string    `json:"goal_name"`
	Category        string    `json:"category,omitempty"`
	Target          float64   `json:"target"`
	Current         float64   `json:"current"`
	ProgressPercent float64   `json:"progress_percent"`
	Status          GoalState `json:"status"`
	Trend           GoalTrend `json:"trend"`
	// Overage is how far the monthly average sits above target, 0 when on
	// track. ReducePercent is the cut, relative to the current average, that
	// would bring it back to target.
	Overage       float64 `json:"overage"`
	ReducePercent float64 `json:"reduce_percent"`
	Months        int     `json:"months"`
}

// GoalStatus compares the monthly average of debit spend, optionally limited
// to one category, against target.
func GoalStatus(ledger []domain.Transaction, name string, target float64, category string) Goal {
	var relevant []domain.Transaction
	for _, t := range domain.Debits(ledger) {
		if category == "" || t.Category == category {
			relevant = append(relevant, t)
		}
	}

	months, totals := domain.MonthlyTotals(byDate(relevant))
	monthly := make([]float64, len(months))
	for i, m := range months {
		monthly[i] = totals[m]
	}

	g := Goal{
		Name:     name,
		Category: category,
		Target:   target,
		Current:  stats.Mean(monthly),
		Trend:    GoalStable,
		Months:   len(months),
	}

	if len(monthly) >= 2 {
		if stats.Mean(monthly[len(monthly)-2:]) < g.Current {
			g.Trend = GoalImproving
		} else {
			g.Trend = GoalWorsening
		}
	}
	if target > 0 {
		g.ProgressPercent = g.Current / target * 100
	}

	g.Status = OnTrack
	if g.Current > target {
		g.Status = OffTrack
		g.Overage = g.Current - target
		g.ReducePercent = g.Overage / g.Current * 100
	}
	return g
}
