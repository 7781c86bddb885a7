package scoring

// Label is the subscription-likelihood outcome for a merchant.
type Label string

const (
	NotSubscription      Label = "not_subscription"
	PossibleSubscription Label = "possible_subscription"
	LikelySubscription   Label = "likely_subscription"
)

// IsSubscription reports whether l is likely or possible.
func (l Label) IsSubscription() bool {
	return l == LikelySubscription || l == PossibleSubscription
}

// Tag is a secondary descriptive flag layered on a label.
type Tag string

const (
	TagGrayRecurringFee         Tag = "gray_recurring_fee"
	TagPossiblyGrayRecurringFee Tag = "possibly_gray_recurring_fee"
	TagMicroSubscription        Tag = "micro_subscription"
	TagPossiblyUnused           Tag = "possibly_unused_subscription"
)

// Label maps a subscription score to a label, checking the higher threshold
// first.
func (e *Engine) Label(subscriptionScore int) Label {
	switch {
	case subscriptionScore >= e.cfg.Labels.LikelyMin:
		return LikelySubscription
	case subscriptionScore >= e.cfg.Labels.PossibleMin:
		return PossibleSubscription
	default:
		return NotSubscription
	}
}

// Tags derives the tags for a scored and labelled merchant. The result is
// never nil and its order is fixed: gray tag, micro, unused.
func (e *Engine) Tags(f MerchantFeatures) []Tag {
	r := e.cfg.Labels
	tags := []Tag{}
	if !f.Label.IsSubscription() {
		return tags
	}

	switch {
	case f.GrayScore >= r.GrayTagMin:
		tags = append(tags, TagGrayRecurringFee)
	case f.GrayScore >= r.PossiblyGrayTagMin:
		tags = append(tags, TagPossiblyGrayRecurringFee)
	}
	if f.AmountMean < r.MicroAmount {
		tags = append(tags, TagMicroSubscription)
	}
	if f.Label == LikelySubscription && e.unusedCategories.has(f.Category) {
		tags = append(tags, TagPossiblyUnused)
	}
	return tags
}

func hasGrayTag(tags []Tag) bool {
	for _, t := range tags {
		if t == TagGrayRecurringFee || t == TagPossiblyGrayRecurringFee {
			return true
		}
	}
	return false
}
