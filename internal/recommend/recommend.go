// Package recommend produces complementary product suggestions after a
// cart addition. Three passes run in priority order: curated complements,
// same-category alternatives, and a cross-category discovery pick. The
// pass order is the ranking; results are deduplicated and capped.
package recommend

import (
	"strings"

	"shopmate/internal/catalog"
)

const (
	maxRecommendations   = 5
	maxSameCategory      = 2
	sameCategoryPriceCap = 1.5
	discoveryMinRating   = 4.0
)

// Recommendation pairs a product with the reason it is being suggested.
type Recommendation struct {
	catalog.Product
	Reason string `json:"reason"`
}

// complementRules maps a category to keyword rules tried in order against
// the added product's name; the FIRST matching rule wins and later rules
// are not consulted. Within Electronics, "headphone" must stay ahead of
// "phone" because headphone names contain the substring "phone".
type complementEntry struct {
	keyword     string
	complements []string
}

var complementRules = []struct {
	category string
	entries  []complementEntry
}{
	{"Electronics", []complementEntry{
		{"headphone", []string{"stand", "case", "charger"}},
		{"earbud", []string{"case", "charger"}},
		{"phone", []string{"case", "charger", "earbuds"}},
		{"laptop", []string{"mouse", "backpack", "charger"}},
		{"mouse", []string{"mouse pad"}},
	}},
	{"Footwear", []complementEntry{
		{"shoe", []string{"socks"}},
		{"air max", []string{"socks"}},
	}},
	{"Clothing", []complementEntry{
		{"t-shirt", []string{"jeans"}},
		{"jeans", []string{"t-shirt", "watch"}},
		{"socks", []string{"air max"}},
	}},
	{"Accessories", []complementEntry{
		{"backpack", []string{"laptop"}},
		{"watch", []string{"t-shirt"}},
		{"case", []string{"charger", "earbuds"}},
	}},
	{"Sports", []complementEntry{
		{"yoga", []string{"socks", "dumbbell"}},
		{"dumbbell", []string{"yoga mat", "socks"}},
	}},
}

// Generate suggests products to go with one just added to the cart. The
// cart slice is the cart after the addition; nothing already in it is
// suggested again.
func Generate(added catalog.Product, cart []catalog.Product, all []catalog.Product) []Recommendation {
	exclude := make(map[string]bool, len(cart)+1)
	exclude[added.ID] = true
	cartCategories := make(map[string]bool, len(cart))
	for _, p := range cart {
		exclude[p.ID] = true
		cartCategories[p.Category] = true
	}
	cartCategories[added.Category] = true

	var out []Recommendation
	seen := make(map[string]bool)
	add := func(p catalog.Product, reason string) {
		if len(out) >= maxRecommendations || exclude[p.ID] || seen[p.ID] {
			return
		}
		seen[p.ID] = true
		out = append(out, Recommendation{Product: p, Reason: reason})
	}

	for _, kw := range complementsFor(added) {
		for _, p := range all {
			if strings.Contains(strings.ToLower(p.Name), kw) {
				add(p, "Perfect companion for your "+added.Name)
			}
		}
	}

	sameCategory := 0
	for _, p := range all {
		if sameCategory >= maxSameCategory {
			break
		}
		if p.Category != added.Category || exclude[p.ID] || seen[p.ID] {
			continue
		}
		if float64(p.Price) > sameCategoryPriceCap*float64(added.Price) {
			continue
		}
		add(p, "Another great "+added.Category+" option")
		sameCategory++
	}

	if len(cartCategories) >= 2 {
		for _, p := range all {
			if cartCategories[p.Category] || exclude[p.ID] || seen[p.ID] || p.Rating < discoveryMinRating {
				continue
			}
			add(p, "Customers who bought similar items also purchased this")
			break
		}
	}

	return out
}

// complementsFor returns the complement keywords for the first rule whose
// keyword appears in the product name, or nil when no rule applies.
func complementsFor(p catalog.Product) []string {
	name := strings.ToLower(p.Name)
	for _, row := range complementRules {
		if row.category != p.Category {
			continue
		}
		for _, e := range row.entries {
			if strings.Contains(name, e.keyword) {
				return e.complements
			}
		}
		break
	}
	return nil
}
