// Package relevance implements the deterministic product ranking heuristics:
// an additive per-product scorer driven by extracted entities, and the
// keyword-bucket matcher used when the generative search path is unavailable.
package relevance

import (
	"sort"
	"strings"

	"shopmate/internal/catalog"
	"shopmate/internal/intent"
)

// scoreThreshold is the cut line: products scoring at or below it are
// excluded from ranked results.
const scoreThreshold = 0.3

// ScoredProduct pairs a catalog product with a transient relevance score
// in [0, 1]. Scores are never persisted.
type ScoredProduct struct {
	catalog.Product
	Score float64 `json:"relevance_score"`
}

// Score computes the additive relevance of one product for one utterance.
// Each signal contributes a fixed weight; the sum is clamped to 1.0:
//
//	+0.2  per query word (len > 2) found in name+description+tags
//	+0.4  category match
//	+0.3  price within max bound
//	+0.2  price within min bound
//	+0.5  brand found in product name
//	+rating × 0.1 unconditionally
func Score(text string, p catalog.Product, ents intent.EntitySet) float64 {
	combined := combinedText(p)
	score := 0.0

	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len(w) > 2 && strings.Contains(combined, w) {
			score += 0.2
		}
	}

	if ents.Category != "" && strings.EqualFold(ents.Category, p.Category) {
		score += 0.4
	}
	if ents.MaxPrice != nil && p.Price <= *ents.MaxPrice {
		score += 0.3
	}
	if ents.MinPrice != nil && p.Price >= *ents.MinPrice {
		score += 0.2
	}
	if ents.Brand != "" && strings.Contains(strings.ToLower(p.Name), strings.ToLower(ents.Brand)) {
		score += 0.5
	}

	score += p.Rating * 0.1

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Rank scores every product, drops those at or below the threshold, and
// orders the survivors by score descending with rating breaking ties.
func Rank(text string, ents intent.EntitySet, products []catalog.Product) []ScoredProduct {
	var out []ScoredProduct
	for _, p := range products {
		s := Score(text, p, ents)
		if s <= scoreThreshold {
			continue
		}
		out = append(out, ScoredProduct{Product: p, Score: s})
	}
	sortScored(out)
	return out
}

func sortScored(sp []ScoredProduct) {
	sort.SliceStable(sp, func(i, j int) bool {
		if sp[i].Score != sp[j].Score {
			return sp[i].Score > sp[j].Score
		}
		return sp[i].Rating > sp[j].Rating
	})
}

func combinedText(p catalog.Product) string {
	return strings.ToLower(p.Name + " " + p.Description + " " + strings.Join(p.Tags, " "))
}
