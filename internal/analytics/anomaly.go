package analytics

import (
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/stats"
)

// Anomaly is a debit flagged either as a statistical outlier in its category
// or by an "anomaly" marker in its notes.
type Anomaly struct {
	Date           civil.Date `json:"date"`
	Merchant       string     `json:"merchant"`
	Category       string     `json:"category"`
	Amount         float64    `json:"amount"`
	AvgForCategory *float64   `json:"avg_for_category,omitempty"`
	Deviation      *float64   `json:"deviation,omitempty"` // in standard deviations
	Note           string     `json:"note,omitempty"`
}

// outlierSigma is how many standard deviations above the category mean a
// debit must be to count as an outlier.
const outlierSigma = 2

// DetectAnomalies flags debits above mean+2*std of their category (categories
// with zero variance are skipped) and debits whose notes mention "anomaly".
// A note-flagged row is dropped when a statistical flag already exists for
// the same merchant and date. The result is sorted by amount, highest first.
func DetectAnomalies(ledger []domain.Transaction) []Anomaly {
	debits := domain.Debits(ledger)

	var order []string
	byCategory := make(map[string][]domain.Transaction)
	for _, t := range debits {
		if _, ok := byCategory[t.Category]; !ok {
			order = append(order, t.Category)
		}
		byCategory[t.Category] = append(byCategory[t.Category], t)
	}

	type key struct {
		merchant string
		date     civil.Date
	}
	flagged := make(map[key]bool)
	anomalies := []Anomaly{}

	for _, category := range order {
		rows := byCategory[category]
		amounts := make([]float64, len(rows))
		for i, t := range rows {
			amounts[i] = t.Amount
		}
		mean, std := stats.MeanStd(amounts)
		if std == 0 {
			continue
		}
		for _, t := range rows {
			if t.Amount <= mean+outlierSigma*std {
				continue
			}
			anomalies = append(anomalies, Anomaly{
				Date:           t.Date,
				Merchant:       t.Merchant,
				Category:       category,
				Amount:         t.Amount,
				AvgForCategory: stats.Float(mean),
				Deviation:      stats.Float((t.Amount - mean) / std),
			})
			flagged[key{t.Merchant, t.Date}] = true
		}
	}

	for _, t := range debits {
		if !strings.Contains(strings.ToLower(t.Notes), "anomaly") {
			continue
		}
		k := key{t.Merchant, t.Date}
		if flagged[k] {
			continue
		}
		flagged[k] = true
		anomalies = append(anomalies, Anomaly{
			Date:     t.Date,
			Merchant: t.Merchant,
			Category: t.Category,
			Amount:   t.Amount,
			Note:     t.Notes,
		})
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].Amount > anomalies[j].Amount
	})
	return anomalies
}
