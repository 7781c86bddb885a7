package scoring

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-coach/internal/domain"
)

// Frequency is the billing cadence shown in the subscription summary.
type Frequency string

const (
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Recurring Frequency = "recurring"
)

// Confidence mirrors the label in the subscription summary.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// Subscription is the human-facing view of a merchant labelled likely or
// possible.
type Subscription struct {
	Merchant     string     `json:"merchant"`
	Amount       float64    `json:"amount"`
	Frequency    Frequency  `json:"frequency"`
	LastCharge   civil.Date `json:"last_charge"`
	TotalSpent   float64    `json:"total_spent"`
	IsGrayCharge bool       `json:"is_gray_charge"`
	Confidence   Confidence `json:"confidence"`
}

// DetectSubscriptions scores the ledger and returns its subscriptions sorted
// by total spent, highest first.
func (e *Engine) DetectSubscriptions(ledger []domain.Transaction) []Subscription {
	return e.Subscriptions(e.ScoreMerchants(ledger), ledger)
}

// Subscriptions builds the summary from an already scored merchant roster.
// ledger must be the ledger the roster was scored from.
func (e *Engine) Subscriptions(merchants []MerchantFeatures, ledger []domain.Transaction) []Subscription {
	type spend struct {
		total float64
		last  civil.Date
	}
	spent := make(map[string]*spend)
	for _, t := range sortedByDate(domain.Debits(ledger)) {
		s, ok := spent[t.Merchant]
		if !ok {
			s = &spend{last: t.Date}
			spent[t.Merchant] = s
		}
		s.total += t.Amount
		if t.Date.After(s.last) {
			s.last = t.Date
		}
	}

	subs := []Subscription{}
	for _, f := range merchants {
		if !f.Label.IsSubscription() {
			continue
		}
		sub := Subscription{
			Merchant:     f.Merchant,
			Amount:       f.AmountMean,
			Frequency:    e.Frequency(f.MeanIntervalDays),
			IsGrayCharge: hasGrayTag(f.Tags),
			Confidence:   ConfidenceMedium,
		}
		if f.Label == LikelySubscription {
			sub.Confidence = ConfidenceHigh
		}
		if s, ok := spent[f.Merchant]; ok {
			sub.TotalSpent = s.total
			sub.LastCharge = s.last
		}
		subs = append(subs, sub)
	}

	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].TotalSpent != subs[j].TotalSpent {
			return subs[i].TotalSpent > subs[j].TotalSpent
		}
		return subs[i].Merchant < subs[j].Merchant
	})
	return subs
}

// Frequency classifies a mean interval with the same weekly and monthly
// bands the subscription scorer uses.
func (e *Engine) Frequency(meanIntervalDays *float64) Frequency {
	switch {
	case e.cfg.Subscription.WeeklyInterval.containsOpt(meanIntervalDays):
		return Weekly
	case e.cfg.Subscription.MonthlyInterval.containsOpt(meanIntervalDays):
		return Monthly
	default:
		return Recurring
	}
}

// Totals aggregates a subscription list.
type Totals struct {
	Count        int     `json:"count"`
	MonthlyTotal float64 `json:"monthly_total"`
	GrayCount    int     `json:"gray_count"`
}

// SummarizeSubscriptions computes the monthly-equivalent cost of subs.
// Weekly charges count 52/12 times a month; everything else once.
func SummarizeSubscriptions(subs []Subscription) Totals {
	t := Totals{Count: len(subs)}
	for _, s := range subs {
		if s.Frequency == Weekly {
			t.MonthlyTotal += s.Amount * 52 / 12
		} else {
			t.MonthlyTotal += s.Amount
		}
		if s.IsGrayCharge {
			t.GrayCount++
		}
	}
	return t
}
