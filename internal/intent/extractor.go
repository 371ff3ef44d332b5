package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// categoryKeywords is an ORDERED table: the first category whose keyword
// list matches wins, even when keywords from several categories appear in
// the same utterance. Electronics comes first so "headphones", "phone" and
// friends resolve there before anything else gets a look.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Electronics", []string{"phone", "smartphone", "iphone", "headphone", "earphone", "earbud", "laptop", "computer", "mouse", "charger", "speaker", "camera", "electronics", "gadget"}},
	{"Footwear", []string{"shoe", "sneaker", "boot", "sandal", "footwear", "nike air"}},
	{"Clothing", []string{"shirt", "t-shirt", "tshirt", "jeans", "jacket", "dress", "socks", "clothing", "clothes"}},
	{"Groceries", []string{"pasta", "maggi", "snack", "grocery", "groceries", "food"}},
	{"Accessories", []string{"watch", "backpack", "bag", "wallet", "belt", "sunglasses", "accessor"}},
	{"Home", []string{"lamp", "curtain", "cushion", "furniture", "kitchen", "decor"}},
	{"Sports", []string{"yoga", "dumbbell", "cricket", "football", "fitness", "gym", "sports"}},
	{"Beauty", []string{"cream", "shampoo", "lipstick", "perfume", "makeup", "skincare", "beauty"}},
	{"Books", []string{"book", "novel", "paperback"}},
}

// brandNames is iterated in order; the first case-insensitive hit wins and
// is title-cased in the result.
var brandNames = []string{
	"sony", "apple", "samsung", "nike", "adidas", "puma",
	"hp", "dell", "lenovo", "boat", "titan", "maggi", "lakme",
}

type priceKind int

const (
	priceMax   priceKind = iota // pattern sets max only
	priceRange                  // pattern sets min and max
)

// pricePatterns are tried in priority order; the first match wins and the
// rest are not consulted.
var pricePatterns = []struct {
	re   *regexp.Regexp
	kind priceKind
}{
	{regexp.MustCompile(`under\s+(\d+)`), priceMax},
	{regexp.MustCompile(`below\s+(\d+)`), priceMax},
	{regexp.MustCompile(`less than\s+(\d+)`), priceMax},
	{regexp.MustCompile(`(\d+)\s+to\s+(\d+)`), priceRange},
	{regexp.MustCompile(`between\s+(\d+)\s+and\s+(\d+)`), priceRange},
}

// ExtractEntities pulls category, price bounds, and brand out of free text.
// It never fails; entities that don't appear are simply left as zero values.
func ExtractEntities(text string) EntitySet {
	t := strings.ToLower(text)
	var ents EntitySet

	for _, row := range categoryKeywords {
		for _, kw := range row.keywords {
			if strings.Contains(t, kw) {
				ents.Category = row.category
				break
			}
		}
		if ents.Category != "" {
			break
		}
	}

	for _, pat := range pricePatterns {
		m := pat.re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		switch pat.kind {
		case priceMax:
			ents.MaxPrice = atoiPtr(m[1])
		case priceRange:
			ents.MinPrice = atoiPtr(m[1])
			ents.MaxPrice = atoiPtr(m[2])
		}
		break
	}

	for _, b := range brandNames {
		if strings.Contains(t, b) {
			ents.Brand = titleCase(b)
			break
		}
	}

	return ents
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil // unreachable: the patterns only capture digit runs
	}
	return &n
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
