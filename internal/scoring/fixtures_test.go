package scoring

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-coach/internal/domain"
)

func mustDate(t testing.TB, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func debit(t testing.TB, date, merchant, category string, amount float64) domain.Transaction {
	t.Helper()
	return domain.Transaction{
		Date:     mustDate(t, date),
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

func ptr(v float64) *float64 { return &v }

// householdLedger is eight months of a small household budget:
//   - Landlord LLC: 1500 rent on the 1st, Jan-Aug
//   - Cloudsvc Storage: 2.99 on the 3rd, Jan-Aug
//   - Iron Gym: 12.00 weekly from Jan 6 to Mar 30 (13 charges)
//   - Corner Bakery: one 7.50 purchase
//   - Employer Payroll: 4000 monthly credits
func householdLedger(t testing.TB) []domain.Transaction {
	t.Helper()
	var ledger []domain.Transaction
	months := []string{"01", "02", "03", "04", "05", "06", "07", "08"}
	for _, m := range months {
		ledger = append(ledger,
			debit(t, "2024-"+m+"-01", "Landlord LLC", "Housing", 1500),
			debit(t, "2024-"+m+"-03", "Cloudsvc Storage", "Services", 2.99),
			credit(t, "2024-"+m+"-25", "Employer Payroll", "Income", 4000),
		)
	}

	gym := mustDate(t, "2024-01-06")
	for i := 0; i < 13; i++ {
		ledger = append(ledger, domain.Transaction{
			Date:     gym.AddDays(7 * i),
			Merchant: "Iron Gym",
			Category: "Fitness",
			Amount:   12,
			Type:     domain.Debit,
		})
	}

	ledger = append(ledger, debit(t, "2024-02-14", "Corner Bakery", "Food", 7.50))
	return ledger
}
