package scoring

import "strings"

var merchantStripper = strings.NewReplacer("'", "", "’", "", "-", "")

// NormalizeMerchant lower-cases and trims a merchant string and removes
// apostrophes and hyphens.
func NormalizeMerchant(merchant string) string {
	return merchantStripper.Replace(strings.ToLower(strings.TrimSpace(merchant)))
}

// brandMatcher does substring matching against the brand allowlist, so a
// descriptor such as "netflix inc #4521" still matches "netflix".
type brandMatcher struct {
	tokens []string
}

func newBrandMatcher(brands []string) brandMatcher {
	tokens := make([]string, 0, len(brands))
	for _, b := range brands {
		if n := NormalizeMerchant(b); n != "" {
			tokens = append(tokens, n)
		}
	}
	return brandMatcher{tokens: tokens}
}

func (m brandMatcher) isKnown(merchantNorm string) bool {
	norm := strings.ToLower(merchantNorm)
	for _, tok := range m.tokens {
		if strings.Contains(norm, tok) {
			return true
		}
	}
	return false
}

// categorySet is a case-insensitive set of category names. Whitespace is
// significant; loaders trim fields before rows reach the engine.
type categorySet map[string]struct{}

func newCategorySet(names []string) categorySet {
	set := make(categorySet, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}

func (s categorySet) has(category string) bool {
	_, ok := s[strings.ToLower(category)]
	return ok
}
