package catalog

import "testing"

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("expected a non-empty catalog")
	}

	seen := make(map[string]bool)
	for _, p := range c.All() {
		if p.ID == "" || p.Name == "" || p.Category == "" {
			t.Errorf("product %+v missing required fields", p)
		}
		if seen[p.ID] {
			t.Errorf("duplicate product id %s", p.ID)
		}
		seen[p.ID] = true
		if p.Price <= 0 {
			t.Errorf("product %s has price %d", p.ID, p.Price)
		}
		if p.Rating < 0 || p.Rating > 5 {
			t.Errorf("product %s has rating %f", p.ID, p.Rating)
		}
	}
}

func TestGet(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p, ok := c.Get("prod_001")
	if !ok {
		t.Fatal("prod_001 not found")
	}
	if p.Name != "Sony WH-CH720N Wireless Headphones" {
		t.Errorf("name = %q", p.Name)
	}

	if _, ok := c.Get("prod_999"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestTopRated(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	top := c.TopRated(3)
	if len(top) != 3 {
		t.Fatalf("len = %d, want 3", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Rating > top[i-1].Rating {
			t.Errorf("ratings out of order at %d: %f > %f", i, top[i].Rating, top[i-1].Rating)
		}
	}

	all := c.TopRated(1000)
	if len(all) != c.Len() {
		t.Errorf("TopRated beyond size returned %d, want %d", len(all), c.Len())
	}
}

func TestParseRejectsBadJSON(t *testing.T) {
	if _, err := Parse([]byte("{not json")); err == nil {
		t.Error("expected error for malformed data")
	}
}
