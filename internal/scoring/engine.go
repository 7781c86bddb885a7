// Package scoring classifies merchants in a transaction ledger as recurring
// subscriptions and flags recurring fees that look easy to overlook.
//
// The engine is a pure batch computation: it reads a ledger slice, never
// modifies it, and holds no mutable state, so one Engine may serve any
// number of goroutines.
package scoring

import (
	"sort"

	"github.com/dvloznov/finance-coach/internal/domain"
)

// Engine runs feature extraction, scoring and labelling with a fixed Config.
type Engine struct {
	cfg Config

	brands                 brandMatcher
	subscriptionCategories categorySet
	unusedCategories       categorySet
}

// NewEngine creates an engine from a copy of cfg.
func NewEngine(cfg Config) *Engine {
	cfg.Subscription.Categories = append([]string(nil), cfg.Subscription.Categories...)
	cfg.Labels.UnusedCategories = append([]string(nil), cfg.Labels.UnusedCategories...)
	cfg.KnownBrands = append([]string(nil), cfg.KnownBrands...)

	return &Engine{
		cfg:                    cfg,
		brands:                 newBrandMatcher(cfg.KnownBrands),
		subscriptionCategories: newCategorySet(cfg.Subscription.Categories),
		unusedCategories:       newCategorySet(cfg.Labels.UnusedCategories),
	}
}

// AnnotatedTransaction is a ledger row joined with its merchant's result.
type AnnotatedTransaction struct {
	domain.Transaction
	Label             Label `json:"label"`
	MerchantScore     int   `json:"merchant_score"`
	MerchantGrayScore int   `json:"merchant_gray_score"`
	MerchantTags      []Tag `json:"merchant_tags"`
}

// ScoringOutput is the merchant roster plus every annotated transaction.
type ScoringOutput struct {
	Merchants    []MerchantFeatures     `json:"merchants"`
	Transactions []AnnotatedTransaction `json:"transactions"`
}

// Score extracts features for one merchant and fills in scores, label and
// tags.
func (e *Engine) Score(merchant string, txns []domain.Transaction, avgMonthlySpend float64) MerchantFeatures {
	f := ExtractFeatures(merchant, txns)
	f.SubscriptionScore = e.SubscriptionScore(f)
	f.GrayScore = e.GrayScore(f, avgMonthlySpend)
	f.Label = e.Label(f.SubscriptionScore)
	f.Tags = e.Tags(f)
	return f
}

// ScoreMerchants scores every merchant with at least one debit. Merchants are
// returned sorted by name.
func (e *Engine) ScoreMerchants(ledger []domain.Transaction) []MerchantFeatures {
	avg := AverageMonthlySpend(ledger)

	byMerchant := make(map[string][]domain.Transaction)
	for _, t := range ledger {
		if t.IsDebit() {
			byMerchant[t.Merchant] = append(byMerchant[t.Merchant], t)
		}
	}

	names := make([]string, 0, len(byMerchant))
	for name := range byMerchant {
		names = append(names, name)
	}
	sort.Strings(names)

	merchants := make([]MerchantFeatures, 0, len(names))
	for _, name := range names {
		merchants = append(merchants, e.Score(name, byMerchant[name], avg))
	}
	return merchants
}

// Run scores the ledger and joins the merchant results back onto every
// transaction in its original order. Credits and unscored merchants get the
// neutral annotation.
func (e *Engine) Run(ledger []domain.Transaction) ScoringOutput {
	merchants := e.ScoreMerchants(ledger)

	lookup := make(map[string]*MerchantFeatures, len(merchants))
	for i := range merchants {
		lookup[merchants[i].Merchant] = &merchants[i]
	}

	annotated := make([]AnnotatedTransaction, 0, len(ledger))
	for _, t := range ledger {
		at := AnnotatedTransaction{
			Transaction:  t,
			Label:        NotSubscription,
			MerchantTags: []Tag{},
		}
		if f, ok := lookup[t.Merchant]; ok && t.IsDebit() {
			at.Label = f.Label
			at.MerchantScore = f.SubscriptionScore
			at.MerchantGrayScore = f.GrayScore
			at.MerchantTags = append(at.MerchantTags, f.Tags...)
		}
		annotated = append(annotated, at)
	}

	return ScoringOutput{Merchants: merchants, Transactions: annotated}
}
