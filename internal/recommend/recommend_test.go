package recommend

import (
	"strings"
	"testing"

	"shopmate/internal/catalog"
)

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	return c
}

func mustGet(t *testing.T, c *catalog.Catalog, id string) catalog.Product {
	t.Helper()
	p, ok := c.Get(id)
	if !ok {
		t.Fatalf("catalog has no product %s", id)
	}
	return p
}

func recIDs(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestGenerate_ComplementsComeFirst(t *testing.T) {
	c := loadCatalog(t)
	headphones := mustGet(t, c, "prod_001")

	got := Generate(headphones, []catalog.Product{headphones}, c.All())

	if len(got) != maxRecommendations {
		t.Fatalf("len = %d, want %d", len(got), maxRecommendations)
	}
	// Stand, case and charger are the curated companions, in rule order.
	want := []string{"prod_022", "prod_010", "prod_011"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("ids = %v, want prefix %v", recIDs(got), want)
		}
		if !strings.HasPrefix(got[i].Reason, "Perfect companion for your ") {
			t.Errorf("rec %d reason = %q", i, got[i].Reason)
		}
	}
	// The remainder is filled with affordable same-category picks.
	for _, r := range got[3:] {
		if r.Category != "Electronics" {
			t.Errorf("filler rec %s category = %q, want Electronics", r.ID, r.Category)
		}
		if r.Reason != "Another great Electronics option" {
			t.Errorf("filler reason = %q", r.Reason)
		}
	}
}

func TestGenerate_CrossCategoryDiscovery(t *testing.T) {
	c := loadCatalog(t)
	shoes := mustGet(t, c, "prod_002")
	headphones := mustGet(t, c, "prod_001")

	got := Generate(shoes, []catalog.Product{headphones, shoes}, c.All())

	if len(got) != 2 {
		t.Fatalf("ids = %v, want socks plus one discovery pick", recIDs(got))
	}
	if got[0].ID != "prod_014" {
		t.Errorf("got[0].ID = %s, want prod_014 (socks complement shoes)", got[0].ID)
	}
	last := got[len(got)-1]
	if last.Category == "Footwear" || last.Category == "Electronics" {
		t.Errorf("discovery pick %s is from a cart category %q", last.ID, last.Category)
	}
	if last.Rating < discoveryMinRating {
		t.Errorf("discovery pick rating = %v, want >= %v", last.Rating, discoveryMinRating)
	}
	if last.Reason != "Customers who bought similar items also purchased this" {
		t.Errorf("discovery reason = %q", last.Reason)
	}
}

func TestGenerate_SingleCategoryCartSkipsDiscovery(t *testing.T) {
	c := loadCatalog(t)
	pasta := mustGet(t, c, "prod_004")

	got := Generate(pasta, []catalog.Product{pasta}, c.All())
	if len(got) != 0 {
		t.Fatalf("ids = %v, want none: no complements, no affordable groceries, one category", recIDs(got))
	}
}

func TestGenerate_FirstMatchingRuleWins(t *testing.T) {
	c := loadCatalog(t)
	mouse := mustGet(t, c, "prod_005")

	got := Generate(mouse, []catalog.Product{mouse}, c.All())
	if len(got) == 0 || got[0].ID != "prod_013" {
		t.Fatalf("ids = %v, want the mouse pad first", recIDs(got))
	}
}

func TestGenerate_NeverSuggestsCartContents(t *testing.T) {
	c := loadCatalog(t)
	laptop := mustGet(t, c, "prod_008")
	mouse := mustGet(t, c, "prod_005")

	got := Generate(laptop, []catalog.Product{laptop, mouse}, c.All())
	for _, r := range got {
		if r.ID == "prod_008" || r.ID == "prod_005" {
			t.Errorf("recommended %s, which is already in the cart", r.ID)
		}
	}
	seen := map[string]bool{}
	for _, r := range got {
		if seen[r.ID] {
			t.Errorf("duplicate recommendation %s", r.ID)
		}
		seen[r.ID] = true
	}
}
