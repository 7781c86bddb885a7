package domain

import "sort"

// Debits returns the debit rows of txns in their original order.
func Debits(txns []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if t.IsDebit() {
			out = append(out, t)
		}
	}
	return out
}

// MonthlyTotals sums amounts per calendar month. The returned month keys are
// sorted ascending and only include months that have at least one row.
func MonthlyTotals(txns []Transaction) ([]string, map[string]float64) {
	totals := make(map[string]float64)
	for _, t := range txns {
		totals[t.Month()] += t.Amount
	}
	months := make([]string, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Strings(months)
	return months, totals
}
