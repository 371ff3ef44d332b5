package assistant

import (
	"sort"
	"strings"

	"shopmate/internal/catalog"
)

const (
	// minOverlap is the fraction of a product's name words that must
	// appear in the utterance for a fuzzy match.
	minOverlap = 0.3

	compareLimit   = 3
	recommendCount = 5
)

// resolveProduct finds the product an utterance refers to. An exact
// product id anywhere in the text wins outright; otherwise the product
// whose name words overlap the text the most is chosen, provided the
// overlap clears minOverlap.
func (e *Engine) resolveProduct(message string) (catalog.Product, bool) {
	msg := strings.ToLower(message)

	for _, p := range e.catalog.All() {
		if strings.Contains(msg, strings.ToLower(p.ID)) {
			return p, true
		}
	}

	var best catalog.Product
	bestOverlap := 0.0
	for _, p := range e.catalog.All() {
		o := nameOverlap(msg, p)
		if o > bestOverlap {
			best, bestOverlap = p, o
		}
	}
	if bestOverlap >= minOverlap {
		return best, true
	}
	return catalog.Product{}, false
}

// resolveProducts returns every product the utterance plausibly names,
// best overlap first, capped at limit. Used for comparisons.
func (e *Engine) resolveProducts(message string, limit int) []catalog.Product {
	msg := strings.ToLower(message)

	type scored struct {
		p catalog.Product
		o float64
	}
	var matches []scored
	for _, p := range e.catalog.All() {
		if o := nameOverlap(msg, p); o >= minOverlap {
			matches = append(matches, scored{p, o})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].o > matches[j].o })

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]catalog.Product, len(matches))
	for i, m := range matches {
		out[i] = m.p
	}
	return out
}

// nameOverlap is the fraction of the product's name words present in the
// utterance.
func nameOverlap(msg string, p catalog.Product) float64 {
	words := strings.Fields(strings.ToLower(p.Name))
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for _, w := range words {
		if strings.Contains(msg, w) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}
