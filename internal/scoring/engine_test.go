package scoring

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/dvloznov/finance-coach/internal/domain"
)

func TestEngine_Label(t *testing.T) {
	e := NewEngine(DefaultConfig())

	tests := []struct {
		score int
		want  Label
	}{
		{15, LikelySubscription},
		{8, LikelySubscription},
		{7, PossibleSubscription},
		{4, PossibleSubscription},
		{3, NotSubscription},
		{0, NotSubscription},
	}

	for _, tt := range tests {
		if got := e.Label(tt.score); got != tt.want {
			t.Errorf("Label(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestEngine_Tags(t *testing.T) {
	e := NewEngine(DefaultConfig())

	tests := []struct {
		name string
		f    MerchantFeatures
		want []Tag
	}{
		{
			name: "not a subscription carries no tags",
			f:    MerchantFeatures{Label: NotSubscription, GrayScore: 9, AmountMean: 1, Category: "fitness"},
			want: []Tag{},
		},
		{
			name: "gray fee wins over possibly gray",
			f:    MerchantFeatures{Label: PossibleSubscription, GrayScore: 5, AmountMean: 2},
			want: []Tag{TagGrayRecurringFee, TagMicroSubscription},
		},
		{
			name: "possibly gray",
			f:    MerchantFeatures{Label: LikelySubscription, GrayScore: 3, AmountMean: 20},
			want: []Tag{TagPossiblyGrayRecurringFee},
		},
		{
			name: "unused fitness membership",
			f:    MerchantFeatures{Label: LikelySubscription, GrayScore: 0, AmountMean: 40, Category: "Fitness"},
			want: []Tag{TagPossiblyUnused},
		},
		{
			name: "unused requires likely",
			f:    MerchantFeatures{Label: PossibleSubscription, GrayScore: 2, AmountMean: 40, Category: "education"},
			want: []Tag{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Tags(tt.f)
			if got == nil {
				t.Fatal("Tags() returned nil")
			}
			if !equalTags(got, tt.want) {
				t.Errorf("Tags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngine_Run_EmptyLedger(t *testing.T) {
	e := NewEngine(DefaultConfig())

	out := e.Run(nil)
	if out.Merchants == nil || len(out.Merchants) != 0 {
		t.Errorf("Merchants = %v, want empty non-nil slice", out.Merchants)
	}
	if out.Transactions == nil || len(out.Transactions) != 0 {
		t.Errorf("Transactions = %v, want empty non-nil slice", out.Transactions)
	}

	subs := e.DetectSubscriptions(nil)
	if subs == nil || len(subs) != 0 {
		t.Errorf("DetectSubscriptions(nil) = %v, want empty non-nil slice", subs)
	}

	body, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(body) != `{"merchants":[],"transactions":[]}` {
		t.Errorf("json = %s", body)
	}
}

func TestEngine_Run_Household(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ledger := householdLedger(t)
	out := e.Run(ledger)

	byName := make(map[string]MerchantFeatures)
	for _, m := range out.Merchants {
		byName[m.Merchant] = m
	}
	if _, ok := byName["Employer Payroll"]; ok {
		t.Error("credit-only merchant must not be scored")
	}

	tests := []struct {
		merchant string
		score    int
		gray     int
		label    Label
		tags     []Tag
	}{
		{"Cloudsvc Storage", 11, 10, LikelySubscription, []Tag{TagGrayRecurringFee, TagMicroSubscription}},
		{"Landlord LLC", 9, 2, LikelySubscription, []Tag{}},
		{"Iron Gym", 10, 3, LikelySubscription, []Tag{TagPossiblyGrayRecurringFee, TagPossiblyUnused}},
		{"Corner Bakery", 3, 3, NotSubscription, []Tag{}},
	}

	for _, tt := range tests {
		t.Run(tt.merchant, func(t *testing.T) {
			m, ok := byName[tt.merchant]
			if !ok {
				t.Fatalf("merchant %q missing from roster", tt.merchant)
			}
			if m.SubscriptionScore != tt.score {
				t.Errorf("SubscriptionScore = %d, want %d", m.SubscriptionScore, tt.score)
			}
			if m.GrayScore != tt.gray {
				t.Errorf("GrayScore = %d, want %d", m.GrayScore, tt.gray)
			}
			if m.Label != tt.label {
				t.Errorf("Label = %q, want %q", m.Label, tt.label)
			}
			if !equalTags(m.Tags, tt.tags) {
				t.Errorf("Tags = %v, want %v", m.Tags, tt.tags)
			}
		})
	}

	if len(out.Transactions) != len(ledger) {
		t.Fatalf("annotated %d transactions, want %d", len(out.Transactions), len(ledger))
	}
	for i, at := range out.Transactions {
		if at.Transaction != ledger[i] {
			t.Fatalf("transaction %d out of original order", i)
		}
		if !at.IsDebit() {
			if at.Label != NotSubscription || at.MerchantScore != 0 || at.MerchantGrayScore != 0 || len(at.MerchantTags) != 0 {
				t.Errorf("credit %d annotated %+v, want neutral", i, at)
			}
			continue
		}
		m := byName[at.Merchant]
		if at.Label != m.Label || at.MerchantScore != m.SubscriptionScore || at.MerchantGrayScore != m.GrayScore {
			t.Errorf("transaction %d annotation drifted from roster for %q", i, at.Merchant)
		}
		if !equalTags(at.MerchantTags, m.Tags) {
			t.Errorf("transaction %d tags = %v, want %v", i, at.MerchantTags, m.Tags)
		}
	}
}

func TestEngine_Run_AnnotationTagsAreCopies(t *testing.T) {
	e := NewEngine(DefaultConfig())
	out := e.Run(householdLedger(t))

	for i := range out.Transactions {
		if len(out.Transactions[i].MerchantTags) > 0 {
			out.Transactions[i].MerchantTags[0] = "mutated"
		}
	}
	for _, m := range out.Merchants {
		for _, tag := range m.Tags {
			if tag == "mutated" {
				t.Fatalf("roster tags for %q share storage with annotations", m.Merchant)
			}
		}
	}
}

func TestEngine_Run_Deterministic(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ledger := householdLedger(t)

	reversed := make([]domain.Transaction, len(ledger))
	for i, tx := range ledger {
		reversed[len(ledger)-1-i] = tx
	}

	first, err := json.Marshal(e.Run(ledger).Merchants)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(e.Run(reversed).Merchants)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("merchant roster depends on input order:\n%s\n%s", first, second)
	}

	// Annotations follow input order, so only the roster is order-free.
	forward, backward := e.Run(ledger).Transactions, e.Run(reversed).Transactions
	if len(forward) != len(backward) {
		t.Fatalf("annotated %d and %d rows", len(forward), len(backward))
	}
	for i := range forward {
		if forward[i].Transaction != backward[len(backward)-1-i].Transaction {
			t.Fatalf("annotation %d does not follow input order", i)
		}
	}

	again, _ := json.Marshal(e.Run(ledger))
	once, _ := json.Marshal(e.Run(ledger))
	if !bytes.Equal(again, once) {
		t.Error("two runs over the same ledger differ")
	}
}

func TestEngine_Run_DoesNotMutateLedger(t *testing.T) {
	e := NewEngine(DefaultConfig())
	ledger := householdLedger(t)
	snapshot := append([]domain.Transaction(nil), ledger...)

	e.Run(ledger)
	for i := range ledger {
		if ledger[i] != snapshot[i] {
			t.Fatalf("ledger row %d modified", i)
		}
	}
}

func TestEngine_DetectSubscriptions(t *testing.T) {
	e := NewEngine(DefaultConfig())
	subs := e.DetectSubscriptions(householdLedger(t))

	want := []struct {
		merchant  string
		frequency Frequency
		total     float64
		last      string
		gray      bool
	}{
		{"Landlord LLC", Monthly, 12000, "2024-08-01", false},
		{"Iron Gym", Weekly, 156, "2024-03-30", true},
		{"Cloudsvc Storage", Monthly, 23.92, "2024-08-03", true},
	}

	if len(subs) != len(want) {
		t.Fatalf("got %d subscriptions, want %d: %+v", len(subs), len(want), subs)
	}
	for i, w := range want {
		s := subs[i]
		if s.Merchant != w.merchant {
			t.Errorf("subs[%d].Merchant = %q, want %q", i, s.Merchant, w.merchant)
			continue
		}
		if s.Frequency != w.frequency {
			t.Errorf("%s frequency = %q, want %q", s.Merchant, s.Frequency, w.frequency)
		}
		if math.Abs(s.TotalSpent-w.total) > 1e-9 {
			t.Errorf("%s total = %v, want %v", s.Merchant, s.TotalSpent, w.total)
		}
		if s.LastCharge.String() != w.last {
			t.Errorf("%s last charge = %s, want %s", s.Merchant, s.LastCharge, w.last)
		}
		if s.IsGrayCharge != w.gray {
			t.Errorf("%s gray = %v, want %v", s.Merchant, s.IsGrayCharge, w.gray)
		}
		if s.Confidence != ConfidenceHigh {
			t.Errorf("%s confidence = %q, want high", s.Merchant, s.Confidence)
		}
	}

	totals := SummarizeSubscriptions(subs)
	if totals.Count != 3 || totals.GrayCount != 2 {
		t.Errorf("totals = %+v, want count 3, gray 2", totals)
	}
	if math.Abs(totals.MonthlyTotal-(1500+52+2.99)) > 1e-9 {
		t.Errorf("MonthlyTotal = %v, want %v", totals.MonthlyTotal, 1500+52+2.99)
	}
}

func TestEngine_Frequency(t *testing.T) {
	e := NewEngine(DefaultConfig())

	tests := []struct {
		name     string
		interval *float64
		want     Frequency
	}{
		{"absent", nil, Recurring},
		{"weekly", ptr(7), Weekly},
		{"monthly upper bound", ptr(33), Monthly},
		{"fortnightly", ptr(14), Recurring},
		{"quarterly", ptr(91), Recurring},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Frequency(tt.interval); got != tt.want {
				t.Errorf("Frequency() = %q, want %q", got, tt.want)
			}
		})
	}
}

func equalTags(a, b []Tag) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
