package scoring

import "github.com/dvloznov/finance-coach/internal/domain"

// SubscriptionScore sums the subscription rule bonuses for f. Rules are
// independent; rules over absent statistics contribute nothing.
func (e *Engine) SubscriptionScore(f MerchantFeatures) int {
	r := e.cfg.Subscription
	score := 0

	if f.NumTxns >= r.MinTxns {
		score += r.MinTxnsBonus
	}
	if r.MonthlyInterval.containsOpt(f.MeanIntervalDays) {
		score += r.IntervalBonus
	}
	if r.WeeklyInterval.containsOpt(f.MeanIntervalDays) {
		score += r.IntervalBonus
	}
	if f.StdIntervalDays != nil && *f.StdIntervalDays <= r.MaxIntervalStd {
		score += r.IntervalStdBonus
	}
	if f.AmountCV != nil && *f.AmountCV <= r.MaxAmountCV {
		score += r.AmountCVBonus
	}
	if r.TypicalAmount.Contains(f.AmountMean) {
		score += r.TypicalAmountBonus
	}
	if f.AmountMean < r.MicroAmount {
		score += r.MicroAmountBonus
	}
	if e.subscriptionCategories.has(f.Category) {
		score += r.CategoryBonus
	}
	if f.ActiveDays >= r.LongActiveDays && f.NumTxns >= r.MinTxns {
		score += r.LongActiveBonus
	}
	if r.PriceIncrease.containsOpt(f.PriceIncreasePct) {
		score += r.PriceIncreaseBonus
	}

	return score
}

// GrayScore sums the gray-charge rule bonuses for f. avgMonthlySpend is the
// ledger-wide mean monthly debit total; the spend-share rule is skipped when
// it is not positive.
func (e *Engine) GrayScore(f MerchantFeatures, avgMonthlySpend float64) int {
	r := e.cfg.Gray
	score := 0

	micro := f.AmountMean < r.MicroAmount
	if micro {
		score += r.MicroAmountBonus
	}
	if avgMonthlySpend > 0 && r.SpendShare.Contains(f.AmountMean/avgMonthlySpend) {
		score += r.SpendShareBonus
	}
	if !e.IsKnownBrand(f.MerchantNorm) {
		score += r.UnknownBrandBonus
	}
	// Intentionally stacks with the micro-amount bonus above.
	if micro && r.RecurringInterval.containsOpt(f.MeanIntervalDays) {
		score += r.RecurringMicroBonus
	}
	if f.NumTxns >= r.FrequentMinTxns && f.AmountMean < r.FrequentMaxAmount {
		score += r.FrequentBonus
	}
	if f.ActiveDays > r.LongActiveDays && f.AmountMean < r.LongActiveMaxAmount {
		score += r.LongActiveBonus
	}

	return score
}

// IsKnownBrand reports whether any allowlisted brand token occurs in
// merchantNorm.
func (e *Engine) IsKnownBrand(merchantNorm string) bool {
	return e.brands.isKnown(merchantNorm)
}

// AverageMonthlySpend is the mean of the per-calendar-month debit totals,
// counting only months with debit activity. It is 0 for a ledger without
// debits. Rows are summed in date order so the result does not depend on
// ledger order.
func AverageMonthlySpend(ledger []domain.Transaction) float64 {
	months, totals := domain.MonthlyTotals(sortedByDate(domain.Debits(ledger)))
	if len(months) == 0 {
		return 0
	}
	var sum float64
	for _, m := range months {
		sum += totals[m]
	}
	return sum / float64(len(months))
}
