package intent

// Label identifies the classified purpose of a user utterance.
type Label string

const (
	Greeting        Label = "greeting"
	ProductSearch   Label = "product_search"
	AddToCart       Label = "add_to_cart"
	CartView        Label = "cart_view"
	ProductDetails  Label = "product_details"
	Recommendations Label = "recommendations"
	PriceInquiry    Label = "price_inquiry"
	Compare         Label = "compare"
	General         Label = "general"
)

// EntitySet holds the structured values pulled out of an utterance. Zero
// values mean the entity was absent; extraction does not validate that
// MinPrice <= MaxPrice, so consumers that care must check.
type EntitySet struct {
	Category string `json:"category,omitempty"`
	MinPrice *int   `json:"min_price,omitempty"`
	MaxPrice *int   `json:"max_price,omitempty"`
	Brand    string `json:"brand,omitempty"`
}

// Intent is the classification result for one utterance. Confidence is a
// fixed policy constant (0.8 on a table hit, 0.6 for the default), not a
// learned probability.
type Intent struct {
	Label      Label     `json:"intent"`
	Confidence float64   `json:"confidence"`
	Entities   EntitySet `json:"entities"`
}
