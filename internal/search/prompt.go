package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"shopmate/internal/catalog"
)

const descriptionLimit = 80

// buildPrompt projects the catalog into a compact listing and asks the
// model for matching product ids as a JSON array.
func buildPrompt(query string, products []catalog.Product) string {
	var b strings.Builder
	b.WriteString("You are a product search engine. Given the catalog below, ")
	b.WriteString("return the ids of products matching the user query, best match first, ")
	b.WriteString("as a JSON array of strings. Return [] if nothing matches. ")
	b.WriteString("Respond with the JSON array only, no other text.\n\nCatalog:\n")

	for _, p := range products {
		desc := p.Description
		if len(desc) > descriptionLimit {
			desc = desc[:descriptionLimit]
		}
		fmt.Fprintf(&b, "%s | %s | %s | %d | %s\n", p.ID, p.Name, p.Category, p.Price, desc)
	}

	fmt.Fprintf(&b, "\nQuery: %s\n", query)
	return b.String()
}

// parseIDList extracts the first JSON array from model output. Models
// often wrap answers in prose or code fences, so anything outside the
// bracketed span is ignored.
func parseIDList(raw string) ([]string, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end <= start {
		return nil, false
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &ids); err != nil {
		return nil, false
	}
	return ids, true
}
