package scoring

import (
	"testing"

	"github.com/dvloznov/finance-coach/internal/domain"
)

func TestEngine_SubscriptionScore(t *testing.T) {
	e := NewEngine(DefaultConfig())

	tests := []struct {
		name string
		f    MerchantFeatures
		want int
	}{
		{
			name: "monthly software at every threshold",
			f: MerchantFeatures{
				NumTxns:          3,
				MeanIntervalDays: ptr(30),
				StdIntervalDays:  ptr(0),
				AmountMean:       15,
				AmountCV:         ptr(0),
				Category:         "software",
				ActiveDays:       90,
			},
			// 2 (txns) + 3 (monthly) + 1 (std) + 2 (cv) + 1 (typical) + 1 (category) + 1 (active)
			want: 11,
		},
		{
			name: "single transaction earns no interval or price bonus",
			f: MerchantFeatures{
				NumTxns:    1,
				AmountMean: 15.49,
				AmountCV:   ptr(0),
				Category:   "Entertainment",
			},
			want: 2 + 1 + 1,
		},
		{
			name: "weekly band inclusive bounds",
			f: MerchantFeatures{
				NumTxns:          2,
				MeanIntervalDays: ptr(8),
				StdIntervalDays:  ptr(3),
				AmountMean:       50,
			},
			want: 3 + 1 + 1,
		},
		{
			name: "interval between bands",
			f: MerchantFeatures{
				NumTxns:          4,
				MeanIntervalDays: ptr(14),
				StdIntervalDays:  ptr(3.01),
				AmountMean:       60,
				AmountCV:         ptr(0.051),
			},
			want: 2,
		},
		{
			name: "micro amount with price increase",
			f: MerchantFeatures{
				NumTxns:          3,
				MeanIntervalDays: ptr(27),
				StdIntervalDays:  ptr(1),
				AmountMean:       4.99,
				AmountCV:         ptr(0.05),
				ActiveDays:       89,
				PriceIncreasePct: ptr(0.20),
				Category:         "SUBSCRIPTION",
			},
			want: 2 + 3 + 1 + 2 + 1 + 1 + 1,
		},
		{
			name: "long activity needs three transactions",
			f: MerchantFeatures{
				NumTxns:    2,
				ActiveDays: 400,
				AmountMean: 100,
			},
			want: 0,
		},
		{
			name: "price increase outside band",
			f: MerchantFeatures{
				NumTxns:          2,
				AmountMean:       100,
				PriceIncreasePct: ptr(0.25),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.SubscriptionScore(tt.f); got != tt.want {
				t.Errorf("SubscriptionScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEngine_GrayScore(t *testing.T) {
	e := NewEngine(DefaultConfig())

	stacked := MerchantFeatures{
		MerchantNorm:     "cloudsvc storage",
		NumTxns:          7,
		MeanIntervalDays: ptr(30),
		AmountMean:       2,
		ActiveDays:       200,
	}

	tests := []struct {
		name string
		f    MerchantFeatures
		avg  float64
		want int
	}{
		{
			name: "micro and recurring micro bonuses stack",
			f:    stacked,
			avg:  0,
			// 2 (micro) + 2 (unknown) + 2 (recurring micro) + 2 (frequent) + 1 (long active)
			want: 9,
		},
		{
			name: "spend share adds one more",
			f:    stacked,
			avg:  1000, // 2/1000 = 0.002
			want: 10,
		},
		{
			name: "known brand never gets unknown bonus",
			f: MerchantFeatures{
				MerchantNorm: NormalizeMerchant("Netflix Inc #4521"),
				NumTxns:      12,
				AmountMean:   15.49,
				ActiveDays:   330,
			},
			avg:  3000,
			want: 1,
		},
		{
			name: "same merchant under an unknown name",
			f: MerchantFeatures{
				MerchantNorm: NormalizeMerchant("Flixnet Inc #4521"),
				NumTxns:      12,
				AmountMean:   15.49,
				ActiveDays:   330,
			},
			avg:  3000,
			want: 1 + 2,
		},
		{
			name: "absent interval skips recurring micro bonus",
			f: MerchantFeatures{
				MerchantNorm: "parking meter",
				NumTxns:      1,
				AmountMean:   2.5,
			},
			want: 2 + 2,
		},
		{
			name: "recurring interval without micro amount",
			f: MerchantFeatures{
				MerchantNorm:     "netflix",
				NumTxns:          3,
				MeanIntervalDays: ptr(30),
				AmountMean:       5,
			},
			want: 0,
		},
		{
			name: "spend share bounds are inclusive",
			f: MerchantFeatures{
				MerchantNorm: "spotify",
				NumTxns:      2,
				AmountMean:   20,
			},
			avg:  1000, // 0.02
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.GrayScore(tt.f, tt.avg); got != tt.want {
				t.Errorf("GrayScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEngine_CustomConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KnownBrands = []string{"Cloud-Svc"}
	cfg.Labels.LikelyMin = 20
	e := NewEngine(cfg)

	// Changing the caller's copy must not reach the engine.
	cfg.KnownBrands[0] = "something else"

	if !e.IsKnownBrand("cloudsvc storage") {
		t.Error("custom brand token should be normalized and matched")
	}
	if got := e.Label(11); got != PossibleSubscription {
		t.Errorf("Label(11) = %q with LikelyMin 20, want %q", got, PossibleSubscription)
	}
}

func TestAverageMonthlySpend(t *testing.T) {
	if got := AverageMonthlySpend(nil); got != 0 {
		t.Errorf("AverageMonthlySpend(nil) = %v, want 0", got)
	}

	ledger := []domain.Transaction{
		debit(t, "2024-01-05", "A", "x", 100),
		debit(t, "2024-01-20", "B", "x", 50),
		debit(t, "2024-03-01", "A", "x", 50),
		credit(t, "2024-02-25", "Payroll", "Income", 5000),
	}
	// January 150, March 50; February has no debits and is not counted.
	if got := AverageMonthlySpend(ledger); got != 100 {
		t.Errorf("AverageMonthlySpend() = %v, want 100", got)
	}
}
