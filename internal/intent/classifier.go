package intent

import "strings"

const (
	matchedConfidence = 0.8
	defaultConfidence = 0.6
)

// classificationRules is an ORDERED list: the first rule with any matching
// pattern wins, so rule position is the disambiguation policy between
// overlapping intents ("help me find the price" matches both price_inquiry
// and product_search; the table decides). Keep this a slice, never a map.
var classificationRules = []struct {
	label    Label
	patterns []string
}{
	{Greeting, []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening", "namaste"}},
	{AddToCart, []string{"add to cart", "to cart", "to my cart", "to basket", "add this", "add it", "add that"}},
	{CartView, []string{"my cart", "view cart", "show cart", "cart items", "what's in the cart", "whats in the cart"}},
	{ProductDetails, []string{"tell me about", "more about", "details", "specs", "specification", "describe"}},
	{Compare, []string{"compare", "difference between", " vs ", "versus", "which is better"}},
	{Recommendations, []string{"recommend", "suggest", "what should i buy", "any ideas"}},
	{PriceInquiry, []string{"price", "how much", "cost of", "what does it cost"}},
	{ProductSearch, []string{"show me", "find", "search", "looking for", "i need", "i want", "buy", "get me", "do you have"}},
	{General, []string{"help", "popular", "categories", "category", "what can you do", "thank"}},
}

// Classify maps an utterance to an Intent. The text is lower-cased and
// trimmed, tested against the rule table in order, and entities are always
// extracted regardless of which label wins. No table hit defaults to
// product_search at reduced confidence: an unrecognized utterance in a
// shopping assistant is most usefully treated as a query.
func Classify(text string) Intent {
	t := strings.ToLower(strings.TrimSpace(text))
	ents := ExtractEntities(t)

	for _, rule := range classificationRules {
		for _, p := range rule.patterns {
			if containsPattern(t, p) {
				return Intent{Label: rule.label, Confidence: matchedConfidence, Entities: ents}
			}
		}
	}

	return Intent{Label: ProductSearch, Confidence: defaultConfidence, Entities: ents}
}

// containsPattern is substring containment, except that patterns shorter
// than four characters must match a whole word ("hi" must not fire inside
// "shirt").
func containsPattern(text, pattern string) bool {
	if len(pattern) >= 4 {
		return strings.Contains(text, pattern)
	}
	for _, w := range strings.Fields(text) {
		if strings.Trim(w, ".,!?;:'\"") == pattern {
			return true
		}
	}
	return false
}
