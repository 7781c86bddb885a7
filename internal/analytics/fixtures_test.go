package analytics

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-coach/internal/domain"
)

func debit(t testing.TB, date, merchant, category string, amount float64) domain.Transaction {
	t.Helper()
	d, err := civil.ParseDate(date)
	if err != nil {
		t.Fatalf("parse date %q: %v", date, err)
	}
	return domain.Transaction{
		Date:     d,
		Merchant: merchant,
		Category: category,
		Amount:   amount,
		Type:     domain.Debit,
	}
}

func credit(t testing.TB, date, merchant, category string, amount float64) domain.Transaction {
	t.Helper()
	tx := debit(t, date, merchant, category, amount)
	tx.Type = domain.Credit
	return tx
}

func withNotes(tx domain.Transaction, notes string) domain.Transaction {
	tx.Notes = notes
	return tx
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
