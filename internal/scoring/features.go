package scoring

import (
	"sort"

	"github.com/dvloznov/finance-coach/internal/domain"
	"github.com/dvloznov/finance-coach/internal/stats"
)

// MerchantFeatures is the per-merchant feature vector plus its scores. The
// pointer fields are absent (nil) when the statistic is undefined; they must
// never be read as zero.
type MerchantFeatures struct {
	Merchant         string   `json:"merchant"`
	MerchantNorm     string   `json:"merchant_norm"`
	NumTxns          int      `json:"num_txns"`
	MeanIntervalDays *float64 `json:"mean_interval_days"`
	StdIntervalDays  *float64 `json:"std_interval_days"`
	AmountMean       float64  `json:"amount_mean"`
	AmountStd        float64  `json:"amount_std"`
	AmountCV         *float64 `json:"amount_cv"`
	ActiveDays       int      `json:"active_days"`
	PriceIncreasePct *float64 `json:"price_increase_pct"`
	Category         string   `json:"category"`

	SubscriptionScore int   `json:"subscription_score"`
	GrayScore         int   `json:"gray_score"`
	Label             Label `json:"label"`
	Tags              []Tag `json:"tags"`
}

// ExtractFeatures reduces one merchant's debit transactions, in any order,
// to a feature vector. Scores, label and tags are left zero. The input slice
// is not modified.
func ExtractFeatures(merchant string, txns []domain.Transaction) MerchantFeatures {
	sorted := sortedByDate(txns)
	f := MerchantFeatures{
		Merchant:     merchant,
		MerchantNorm: NormalizeMerchant(merchant),
		NumTxns:      len(sorted),
		Tags:         []Tag{},
	}
	if len(sorted) == 0 {
		return f
	}

	if len(sorted) >= 2 {
		gaps := make([]float64, 0, len(sorted)-1)
		for i := 1; i < len(sorted); i++ {
			gaps = append(gaps, float64(sorted[i].Date.DaysSince(sorted[i-1].Date)))
		}
		mean, std := stats.MeanStd(gaps)
		f.MeanIntervalDays = stats.Float(mean)
		f.StdIntervalDays = stats.Float(std)
		f.ActiveDays = sorted[len(sorted)-1].Date.DaysSince(sorted[0].Date)

		first, last := sorted[0].Amount, sorted[len(sorted)-1].Amount
		if first != 0 {
			f.PriceIncreasePct = stats.Float((last - first) / first)
		}
	}

	amounts := make([]float64, len(sorted))
	for i, t := range sorted {
		amounts[i] = t.Amount
	}
	f.AmountMean, f.AmountStd = stats.MeanStd(amounts)
	if f.AmountMean > 0 {
		f.AmountCV = stats.Float(f.AmountStd / f.AmountMean)
	}

	f.Category = dominantCategory(sorted)
	return f
}

// sortedByDate returns a copy of txns in ascending date order. Same-day rows
// are ordered by amount, category and notes so the result does not depend on
// the input order.
func sortedByDate(txns []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.Amount != b.Amount {
			return a.Amount < b.Amount
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Notes < b.Notes
	})
	return out
}

// dominantCategory returns the most frequent category; ties go to the one
// seen first in the date-sorted sequence.
func dominantCategory(sorted []domain.Transaction) string {
	counts := make(map[string]int)
	var order []string
	for _, t := range sorted {
		if _, seen := counts[t.Category]; !seen {
			order = append(order, t.Category)
		}
		counts[t.Category]++
	}

	best, bestCount := "", 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}
