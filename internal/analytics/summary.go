// Package analytics computes spending views over a ledger that sit beside the
// subscription engine: totals, category breakdowns, anomalies and goals.
package analytics

import (
	"sort"

	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/scoring"
)

// Trend is the direction of a category's spend between its last two months.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// trendThresholdPct is the month-over-month change, in percent, beyond which a
// category counts as moving.
const trendThresholdPct = 10

// seriesCategories is how many categories get a monthly series.
const seriesCategories = 6

// CategorySpend is one category's share of total debit spend.
type CategorySpend struct {
	Category      string  `json:"category"`
	Total         float64 `json:"total"`
	Percentage    float64 `json:"percentage"`
	Trend         Trend   `json:"trend"`
	ChangePercent float64 `json:"change_percent"`
}

// MonthAmount is a single point in a category series.
type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// CategorySeries is the monthly debit spend of one category.
type CategorySeries struct {
	Category string        `json:"category"`
	Months   []MonthAmount `json:"months"`
}

// Summary is the spending overview of a ledger.
type Summary struct {
	TotalIncome           float64          `json:"total_income"`
	TotalExpenses         float64          `json:"total_expenses"`
	NetSavings            float64          `json:"net_savings"`
	AvgMonthlySpending    float64          `json:"avg_monthly_spending"`
	TransactionCount      int              `json:"transaction_count"`
	Categories            []CategorySpend  `json:"categories"`
	CategoryMonthlySeries []CategorySeries `json:"category_monthly_series"`
}

// Summarize builds the spending overview. Categories are ordered by total
// spend, highest first, ties broken by name.
func Summarize(ledger []domain.Transaction) Summary {
	s := Summary{
		TransactionCount:      len(ledger),
		Categories:            []CategorySpend{},
		CategoryMonthlySeries: []CategorySeries{},
	}

	for _, t := range byDate(ledger) {
		if t.IsDebit() {
			s.TotalExpenses += t.Amount
		} else {
			s.TotalIncome += t.Amount
		}
	}
	s.NetSavings = s.TotalIncome - s.TotalExpenses
	s.AvgMonthlySpending = scoring.AverageMonthlySpend(ledger)

	byCategory := groupByCategory(domain.Debits(ledger))
	for category, rows := range byCategory {
		var total float64
		for _, t := range rows {
			total += t.Amount
		}
		cs := CategorySpend{Category: category, Total: total}
		if s.TotalExpenses > 0 {
			cs.Percentage = total / s.TotalExpenses * 100
		}
		cs.Trend, cs.ChangePercent = CategoryTrend(rows)
		s.Categories = append(s.Categories, cs)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if s.Categories[i].Total != s.Categories[j].Total {
			return s.Categories[i].Total > s.Categories[j].Total
		}
		return s.Categories[i].Category < s.Categories[j].Category
	})

	for i, cs := range s.Categories {
		if i == seriesCategories {
			break
		}
		months, totals := domain.MonthlyTotals(byCategory[cs.Category])
		series := CategorySeries{Category: cs.Category, Months: make([]MonthAmount, 0, len(months))}
		for _, m := range months {
			series.Months = append(series.Months, MonthAmount{Month: m, Amount: totals[m]})
		}
		s.CategoryMonthlySeries = append(s.CategoryMonthlySeries, series)
	}

	return s
}

// CategoryTrend compares the last two months that have spend in rows, which
// should all belong to one category.
func CategoryTrend(rows []domain.Transaction) (Trend, float64) {
	months, totals := domain.MonthlyTotals(rows)
	if len(months) < 2 {
		return TrendStable, 0
	}
	last := totals[months[len(months)-1]]
	prev := totals[months[len(months)-2]]
	if prev == 0 {
		return TrendStable, 0
	}

	change := (last - prev) / prev * 100
	switch {
	case change > trendThresholdPct:
		return TrendIncreasing, change
	case change < -trendThresholdPct:
		return TrendDecreasing, change
	default:
		return TrendStable, change
	}
}

// groupByCategory buckets rows by category, each bucket in date order.
func groupByCategory(rows []domain.Transaction) map[string][]domain.Transaction {
	out := make(map[string][]domain.Transaction)
	for _, t := range byDate(rows) {
		out[t.Category] = append(out[t.Category], t)
	}
	return out
}

// byDate returns a copy of rows sorted by date, then amount, so sums over it
// do not depend on ledger order.
func byDate(rows []domain.Transaction) []domain.Transaction {
	sorted := append([]domain.Transaction(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Amount < sorted[j].Amount
	})
	return sorted
}
