package relevance

import (
	"strings"

	"shopmate/internal/catalog"
)

const matcherLimit = 10

// bucket describes one product family the keyword matcher understands.
// queryWords detect the family in the utterance; productWords must appear
// in a product's combined text for it to qualify. A non-empty brands list
// additionally gates qualification, which is how headphone products
// (whose names contain "phone") stay out of the phone bucket.
type bucket struct {
	name         string
	queryWords   []string
	productWords []string
	brands       []string
}

// buckets are checked in order; the first whose query words appear wins.
// The bare word "phone" lives inside "headphone", so the phone bucket is
// guarded by a negative check in matchBucketQuery rather than listed here.
var buckets = []bucket{
	{
		name:         "phone",
		queryWords:   []string{"smartphone", "mobile", "iphone", "android"},
		productWords: []string{"phone", "smartphone", "mobile"},
		brands:       []string{"iphone", "apple", "samsung", "galaxy", "oneplus", "pixel"},
	},
	{
		name:         "laptop",
		queryWords:   []string{"laptop", "notebook", "macbook", "computer"},
		productWords: []string{"laptop", "notebook", "macbook"},
	},
	{
		name:         "headphone",
		queryWords:   []string{"headphone", "earphone", "earbud", "headset"},
		productWords: []string{"headphone", "earphone", "earbud", "headset"},
	},
}

// MatchBucket classifies the query into one of the known product families
// and returns every product qualifying for that family at score 1.0,
// ordered by rating. The second return is false when the query names no
// family, in which case the caller should fall back to GenericScore.
func MatchBucket(query string, products []catalog.Product) ([]ScoredProduct, bool) {
	b := matchBucketQuery(strings.ToLower(query))
	if b == nil {
		return nil, false
	}

	var out []ScoredProduct
	for _, p := range products {
		text := combinedText(p)
		if !containsAny(text, b.productWords) {
			continue
		}
		if len(b.brands) > 0 && !containsAny(text, b.brands) {
			continue
		}
		out = append(out, ScoredProduct{Product: p, Score: 1.0})
	}
	sortScored(out)
	if len(out) > matcherLimit {
		out = out[:matcherLimit]
	}
	return out, true
}

func matchBucketQuery(q string) *bucket {
	for i := range buckets {
		b := &buckets[i]
		if containsAny(q, b.queryWords) {
			return b
		}
		// "phone" alone counts for the phone bucket unless the utterance
		// is really about headphones or earphones.
		if b.name == "phone" && strings.Contains(q, "phone") &&
			!strings.Contains(q, "headphone") && !strings.Contains(q, "earphone") {
			return b
		}
	}
	return nil
}

// GenericScore is the per-word fallback for queries outside every bucket:
// +0.4 per query word (len > 2) found in the product text, +0.3 when the
// query names the product's category, clamped to 1.0. Products at or
// below 0.3 are dropped and at most matcherLimit survivors are returned,
// best first.
func GenericScore(query string, products []catalog.Product) []ScoredProduct {
	q := strings.ToLower(query)
	words := strings.Fields(q)

	var out []ScoredProduct
	for _, p := range products {
		text := combinedText(p)
		score := 0.0
		for _, w := range words {
			if len(w) > 2 && strings.Contains(text, w) {
				score += 0.4
			}
		}
		if strings.Contains(q, strings.ToLower(p.Category)) {
			score += 0.3
		}
		if score <= scoreThreshold {
			continue
		}
		if score > 1.0 {
			score = 1.0
		}
		out = append(out, ScoredProduct{Product: p, Score: score})
	}
	sortScored(out)
	if len(out) > matcherLimit {
		out = out[:matcherLimit]
	}
	return out
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
