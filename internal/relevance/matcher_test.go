package relevance

import (
	"testing"

	"shopmate/internal/catalog"
)

var matcherCatalog = []catalog.Product{
	{ID: "m1", Name: "Sony WH-CH720N Wireless Headphones", Price: 2999, Category: "Electronics",
		Description: "Noise-canceling headphones", Rating: 4.5},
	{ID: "m2", Name: "Apple iPhone 15", Price: 79999, Category: "Electronics",
		Description: "Latest iPhone with advanced camera", Tags: []string{"smartphone"}, Rating: 4.8},
	{ID: "m3", Name: "Samsung Galaxy S24", Price: 69999, Category: "Electronics",
		Description: "Flagship Android smartphone", Rating: 4.6},
	{ID: "m4", Name: "HP Pavilion Gaming Laptop", Price: 58999, Category: "Electronics",
		Description: "15-inch gaming laptop", Rating: 4.3},
	{ID: "m5", Name: "Non-Slip Yoga Mat", Price: 899, Category: "Sports",
		Description: "Cushioned yoga mat", Rating: 4.1},
}

func TestMatchBucket_Laptop(t *testing.T) {
	got, ok := MatchBucket("laptop for gaming", matcherCatalog)
	if !ok {
		t.Fatal("expected a bucket match")
	}
	if len(got) != 1 || got[0].ID != "m4" {
		t.Fatalf("ids = %v, want [m4]", ids(got))
	}
	if got[0].Score != 1.0 {
		t.Errorf("Score = %v, want 1.0", got[0].Score)
	}
}

func TestMatchBucket_PhoneRequiresKnownBrand(t *testing.T) {
	got, ok := MatchBucket("a new smartphone", matcherCatalog)
	if !ok {
		t.Fatal("expected the phone bucket to match")
	}
	for _, sp := range got {
		if sp.ID == "m1" {
			t.Fatal("headphones must not qualify for the phone bucket")
		}
	}
	if len(got) != 2 || got[0].ID != "m2" {
		t.Fatalf("ids = %v, want [m2 m3] (rating order)", ids(got))
	}
}

// "headphones" contains the substring "phone"; the query must still land
// in the headphone bucket, not the phone bucket.
func TestMatchBucket_HeadphonesAreNotPhones(t *testing.T) {
	got, ok := MatchBucket("wireless headphones please", matcherCatalog)
	if !ok {
		t.Fatal("expected the headphone bucket to match")
	}
	if len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("ids = %v, want [m1]", ids(got))
	}
}

func TestMatchBucket_BarePhoneWord(t *testing.T) {
	got, ok := MatchBucket("i want a phone", matcherCatalog)
	if !ok {
		t.Fatal("expected the phone bucket to match")
	}
	if len(got) != 2 {
		t.Fatalf("ids = %v, want the two phones", ids(got))
	}
}

func TestMatchBucket_NoBucket(t *testing.T) {
	if _, ok := MatchBucket("yoga mat", matcherCatalog); ok {
		t.Fatal("yoga gear matches no bucket")
	}
}

func TestGenericScore_WordBonus(t *testing.T) {
	got := GenericScore("yoga mat", matcherCatalog)
	if len(got) != 1 || got[0].ID != "m5" {
		t.Fatalf("ids = %v, want [m5]", ids(got))
	}
	if want := 0.4 + 0.4; got[0].Score != want {
		t.Errorf("Score = %v, want %v", got[0].Score, want)
	}
}

func TestGenericScore_ClampsAtOne(t *testing.T) {
	// Word bonuses plus the category bonus would exceed 1.0 unclamped.
	got := GenericScore("non-slip cushioned yoga mat for sports", matcherCatalog)
	if len(got) != 1 || got[0].ID != "m5" {
		t.Fatalf("ids = %v, want [m5]", ids(got))
	}
	if got[0].Score != 1.0 {
		t.Errorf("Score = %v, want 1.0", got[0].Score)
	}
}

func TestGenericScore_ThresholdExcludesWeakMatches(t *testing.T) {
	// A single category bonus (0.3) is not enough to survive.
	got := GenericScore("sports", matcherCatalog)
	if len(got) != 0 {
		t.Fatalf("ids = %v, want none", ids(got))
	}
}

func TestGenericScore_CapsResults(t *testing.T) {
	var many []catalog.Product
	for i := 0; i < 15; i++ {
		many = append(many, catalog.Product{
			ID:   string(rune('a' + i)),
			Name: "ceramic coffee mug", Category: "Home", Rating: 4.0,
		})
	}
	got := GenericScore("coffee mug", many)
	if len(got) != matcherLimit {
		t.Fatalf("len = %d, want %d", len(got), matcherLimit)
	}
}
