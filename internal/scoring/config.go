package scoring

// Band is an inclusive numeric range [Min, Max].
type Band struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the band, bounds included.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// containsOpt is Contains for optional values: an absent value is never in
// any band.
func (b Band) containsOpt(v *float64) bool {
	return v != nil && b.Contains(*v)
}

// SubscriptionRules are the additive rules of the subscription scorer.
type SubscriptionRules struct {
	MinTxns      int // num_txns >= MinTxns
	MinTxnsBonus int

	MonthlyInterval Band
	WeeklyInterval  Band
	IntervalBonus   int // awarded per matching band

	MaxIntervalStd   float64
	IntervalStdBonus int

	MaxAmountCV   float64
	AmountCVBonus int

	TypicalAmount      Band
	TypicalAmountBonus int

	MicroAmount      float64 // amount_mean < MicroAmount
	MicroAmountBonus int

	Categories    []string // compared case-insensitively
	CategoryBonus int

	LongActiveDays  int // active_days >= LongActiveDays and num_txns >= MinTxns
	LongActiveBonus int

	PriceIncrease      Band
	PriceIncreaseBonus int
}

// GrayRules are the additive rules of the gray-charge scorer.
type GrayRules struct {
	MicroAmount      float64 // amount_mean < MicroAmount
	MicroAmountBonus int

	SpendShare      Band // amount_mean / avg_monthly_spend
	SpendShareBonus int

	UnknownBrandBonus int

	// Stacks on top of the micro-amount rule.
	RecurringInterval   Band
	RecurringMicroBonus int

	FrequentMinTxns   int
	FrequentMaxAmount float64
	FrequentBonus     int

	LongActiveDays      int // active_days > LongActiveDays
	LongActiveMaxAmount float64
	LongActiveBonus     int
}

// LabelRules turn scores into a label and tags.
type LabelRules struct {
	LikelyMin   int
	PossibleMin int

	GrayTagMin         int
	PossiblyGrayTagMin int

	MicroAmount float64

	UnusedCategories []string // compared case-insensitively
}

// Config carries every threshold of the engine. NewEngine copies it, so a
// Config can be modified after construction without affecting the engine.
type Config struct {
	Subscription SubscriptionRules
	Gray         GrayRules
	Labels       LabelRules
	KnownBrands  []string
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		Subscription: SubscriptionRules{
			MinTxns:      3,
			MinTxnsBonus: 2,

			MonthlyInterval: Band{Min: 27, Max: 33},
			WeeklyInterval:  Band{Min: 6, Max: 8},
			IntervalBonus:   3,

			MaxIntervalStd:   3,
			IntervalStdBonus: 1,

			MaxAmountCV:   0.05,
			AmountCVBonus: 2,

			TypicalAmount:      Band{Min: 5, Max: 50},
			TypicalAmountBonus: 1,

			MicroAmount:      5,
			MicroAmountBonus: 1,

			Categories:    []string{"entertainment", "software", "fitness", "services", "education", "subscription"},
			CategoryBonus: 1,

			LongActiveDays:  90,
			LongActiveBonus: 1,

			PriceIncrease:      Band{Min: 0.05, Max: 0.20},
			PriceIncreaseBonus: 1,
		},
		Gray: GrayRules{
			MicroAmount:      5,
			MicroAmountBonus: 2,

			SpendShare:      Band{Min: 0.001, Max: 0.02},
			SpendShareBonus: 1,

			UnknownBrandBonus: 2,

			RecurringInterval:   Band{Min: 25, Max: 45},
			RecurringMicroBonus: 2,

			FrequentMinTxns:   6,
			FrequentMaxAmount: 3,
			FrequentBonus:     2,

			LongActiveDays:      180,
			LongActiveMaxAmount: 10,
			LongActiveBonus:     1,
		},
		Labels: LabelRules{
			LikelyMin:          8,
			PossibleMin:        4,
			GrayTagMin:         5,
			PossiblyGrayTagMin: 3,
			MicroAmount:        5,
			UnusedCategories:   []string{"fitness", "education"},
		},
		KnownBrands: DefaultKnownBrands(),
	}
}

// DefaultKnownBrands is the allowlist of brand tokens exempt from the
// unknown-brand gray bonus. Tokens are matched as substrings, so brands named
// after common words carry a qualifier ("target store", "zoom.us").
func DefaultKnownBrands() []string {
	return []string{
		"netflix", "spotify", "hulu", "disney", "hbo", "paramount", "peacock",
		"youtube", "apple.com", "apple services", "icloud", "itunes", "google", "amazon", "prime video",
		"audible", "kindle", "microsoft", "xbox", "playstation", "nintendo",
		"adobe", "dropbox", "github", "notion labs", "notion.so", "slack",
		"zoom.us", "zoom video", "canva",
		"openai", "chatgpt", "linkedin", "duolingo", "coursera", "udemy",
		"masterclass", "peloton", "planet fitness", "classpass", "strava",
		"nytimes", "new york times", "wall street journal", "washington post",
		"patreon", "twitch", "siriusxm", "pandora", "tidal", "crunchyroll",
		"uber", "lyft", "doordash", "grubhub", "instacart", "starbucks",
		"costco", "walmart", "target.com", "target store", "verizon", "tmobile", "comcast", "xfinity",
		"geico", "progressive ins", "state farm",
	}
}
