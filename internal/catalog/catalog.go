package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed products.json
var seedFS embed.FS

// Catalog is the read-only product collection, loaded once at process start
// and safe for concurrent reads.
type Catalog struct {
	products []Product
	byID     map[string]int
}

// Load parses the embedded seed data and builds the id index.
func Load() (*Catalog, error) {
	data, err := seedFS.ReadFile("products.json")
	if err != nil {
		return nil, fmt.Errorf("reading product seed: %w", err)
	}
	return Parse(data)
}

// Parse builds a Catalog from raw JSON. Exposed for tests that need a
// smaller or custom catalog.
func Parse(data []byte) (*Catalog, error) {
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parsing product seed: %w", err)
	}

	valid := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		valid[c] = true
	}

	byID := make(map[string]int, len(products))
	for i, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("product at index %d has no id", i)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if !valid[p.Category] {
			return nil, fmt.Errorf("product %s has unknown category %q", p.ID, p.Category)
		}
		byID[p.ID] = i
	}

	return &Catalog{products: products, byID: byID}, nil
}

// All returns a copy of every product in seed order.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Get returns the product with the given id.
func (c *Catalog) Get(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Len returns the number of products in the catalog.
func (c *Catalog) Len() int {
	return len(c.products)
}

// TopRated returns up to n products ordered by rating descending.
// Ties keep seed order (stable sort).
func (c *Catalog) TopRated(n int) []Product {
	out := c.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
