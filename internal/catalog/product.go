package catalog

// Product is an immutable catalog record. Prices are plain integers in the
// store currency; the core never does currency arithmetic beyond comparison.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       int      `json:"price"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"image_url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Stock       int      `json:"stock"`
	Rating      float64  `json:"rating"`
}

// Categories is the fixed set of catalog categories, in declaration order.
// The entity extractor's category table iterates in this order, so the
// position of a category here is a precedence decision, not cosmetic.
var Categories = []string{
	"Electronics",
	"Footwear",
	"Clothing",
	"Groceries",
	"Accessories",
	"Home",
	"Sports",
	"Beauty",
	"Books",
}
