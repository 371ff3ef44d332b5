// Package assistant turns classified utterances into replies. Every
// intent label has a handler; handlers read and mutate session state
// through the session manager and never call the network except through
// the search engine.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"shopmate/internal/catalog"
	"shopmate/internal/intent"
	"shopmate/internal/recommend"
	"shopmate/internal/relevance"
	"shopmate/internal/search"
	"shopmate/internal/session"
	"shopmate/internal/storage"
)

const (
	defaultHistoryLimit = 10
	popularCount        = 3
)

// Reply is the assistant's answer to one utterance.
type Reply struct {
	Text            string                     `json:"response"`
	Intent          intent.Intent              `json:"intent"`
	Products        []relevance.ScoredProduct  `json:"products,omitempty"`
	Recommendations []recommend.Recommendation `json:"recommendations,omitempty"`
	CartUpdated     bool                       `json:"cart_updated,omitempty"`
}

// Engine dispatches utterances to intent handlers.
type Engine struct {
	catalog      *catalog.Catalog
	sessions     *session.Manager
	search       *search.Engine
	log          *slog.Logger
	historyLimit int
	greetCounter atomic.Uint64
}

// NewEngine creates an assistant engine. A historyLimit of zero selects
// the default.
func NewEngine(cat *catalog.Catalog, sessions *session.Manager, searchEngine *search.Engine, logger *slog.Logger, historyLimit int) *Engine {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Engine{
		catalog:      cat,
		sessions:     sessions,
		search:       searchEngine,
		log:          logger,
		historyLimit: historyLimit,
	}
}

// HandleTurn processes one shopper utterance: classify, dispatch, and
// record both sides of the exchange in the conversation log.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, message string) (Reply, error) {
	in := intent.Classify(message)
	e.log.Debug("classified utterance", "session", session.Normalize(sessionID), "intent", in.Label, "confidence", in.Confidence)

	if err := e.sessions.AppendTurn(sessionID, storage.RoleUser, message, string(in.Label)); err != nil {
		return Reply{}, fmt.Errorf("recording user turn: %w", err)
	}

	reply, err := e.dispatch(ctx, sessionID, message, in)
	if err != nil {
		return Reply{}, err
	}
	reply.Intent = in

	if err := e.sessions.AppendTurn(sessionID, storage.RoleAssistant, reply.Text, ""); err != nil {
		return Reply{}, fmt.Errorf("recording assistant turn: %w", err)
	}
	return reply, nil
}

func (e *Engine) dispatch(ctx context.Context, sessionID, message string, in intent.Intent) (Reply, error) {
	switch in.Label {
	case intent.Greeting:
		return e.handleGreeting(), nil
	case intent.ProductSearch:
		return e.handleSearch(ctx, message, in.Entities), nil
	case intent.AddToCart:
		return e.handleAddToCart(sessionID, message)
	case intent.CartView:
		return e.handleCartView(sessionID)
	case intent.ProductDetails:
		return e.handleDetails(message), nil
	case intent.Recommendations:
		return e.handleRecommendations(sessionID)
	case intent.PriceInquiry:
		return e.handlePrice(message), nil
	case intent.Compare:
		return e.handleCompare(message), nil
	case intent.General:
		return e.handleGeneral(message), nil
	}
	return e.handleSearch(ctx, message, in.Entities), nil
}

// History returns the session's recent exchanges, oldest first.
func (e *Engine) History(sessionID string) ([]storage.Turn, error) {
	return e.sessions.History(sessionID, e.historyLimit)
}

var greetings = []string{
	"Hello! I'm your shopping assistant. Looking for anything in particular today?",
	"Hi there! Tell me what you need and I'll find it for you.",
	"Welcome back! What can I help you shop for today?",
}

const capabilityMenu = "I can search products, compare them, track your cart, and suggest things you might like."

func (e *Engine) handleGreeting() Reply {
	n := e.greetCounter.Add(1) - 1
	return Reply{Text: greetings[n%uint64(len(greetings))] + " " + capabilityMenu}
}

func (e *Engine) handleSearch(ctx context.Context, message string, ents intent.EntitySet) Reply {
	results := e.search.Search(ctx, message, ents, e.catalog.All())
	if len(results) == 0 {
		return e.noResults()
	}
	return Reply{
		Text:     fmt.Sprintf("Here's what I found for you (%d matches):", len(results)),
		Products: results,
	}
}

// noResults is the shared empty-search behavior: admit the miss and offer
// the shop's best-rated items instead.
func (e *Engine) noResults() Reply {
	var popular []relevance.ScoredProduct
	for _, p := range e.catalog.TopRated(popularCount) {
		popular = append(popular, relevance.ScoredProduct{Product: p, Score: p.Rating / 5})
	}
	return Reply{
		Text:     "I couldn't find anything matching that. Here are some of our most popular items:",
		Products: popular,
	}
}

func (e *Engine) handleAddToCart(sessionID, message string) (Reply, error) {
	p, ok := e.resolveProduct(message)
	if !ok {
		return Reply{Text: "I couldn't tell which product you meant. Could you name it more precisely?"}, nil
	}

	if err := e.sessions.AddToCart(sessionID, p.ID, 1); err != nil {
		return Reply{}, fmt.Errorf("adding to cart: %w", err)
	}

	cart, err := e.cartProducts(sessionID)
	if err != nil {
		return Reply{}, err
	}

	return Reply{
		Text:            fmt.Sprintf("Added %s to your cart (₹%d).", p.Name, p.Price),
		Recommendations: recommend.Generate(p, cart, e.catalog.All()),
		CartUpdated:     true,
	}, nil
}

func (e *Engine) handleCartView(sessionID string) (Reply, error) {
	items, err := e.sessions.Cart(sessionID)
	if err != nil {
		return Reply{}, fmt.Errorf("reading cart: %w", err)
	}
	return Reply{Text: e.cartSummary(items)}, nil
}

func (e *Engine) handleDetails(message string) Reply {
	p, ok := e.resolveProduct(message)
	if !ok {
		return Reply{Text: "Which product would you like to know more about?"}
	}
	return Reply{
		Text: fmt.Sprintf("%s (₹%d, rated %.1f/5): %s Currently %d in stock.",
			p.Name, p.Price, p.Rating, p.Description, p.Stock),
		Products: []relevance.ScoredProduct{{Product: p, Score: 1.0}},
	}
}

func (e *Engine) handleRecommendations(sessionID string) (Reply, error) {
	cart, err := e.cartProducts(sessionID)
	if err != nil {
		return Reply{}, err
	}

	if len(cart) == 0 {
		var recs []recommend.Recommendation
		for _, p := range e.catalog.TopRated(recommendCount) {
			recs = append(recs, recommend.Recommendation{Product: p, Reason: "Highly rated by other shoppers"})
		}
		return Reply{
			Text:            "Your cart is empty, so here are our highest-rated products:",
			Recommendations: recs,
		}, nil
	}

	last := cart[len(cart)-1]
	recs := recommend.Generate(last, cart, e.catalog.All())
	if len(recs) == 0 {
		return Reply{Text: "Nothing new to suggest right now. You already picked the good stuff!"}, nil
	}
	return Reply{
		Text:            fmt.Sprintf("Based on the %s in your cart, you might like:", last.Name),
		Recommendations: recs,
	}, nil
}

func (e *Engine) handlePrice(message string) Reply {
	p, ok := e.resolveProduct(message)
	if !ok {
		return Reply{Text: "Which product's price would you like to know?"}
	}
	return Reply{Text: fmt.Sprintf("The %s costs ₹%d.", p.Name, p.Price)}
}

func (e *Engine) handleCompare(message string) Reply {
	candidates := e.resolveProducts(message, compareLimit)
	if len(candidates) < 2 {
		return Reply{Text: "Tell me which two products you'd like to compare."}
	}

	text := "Here's how they stack up:\n"
	for _, p := range candidates {
		text += fmt.Sprintf("- %s: ₹%d, rated %.1f/5. %s\n", p.Name, p.Price, p.Rating, p.Description)
	}
	var products []relevance.ScoredProduct
	for _, p := range candidates {
		products = append(products, relevance.ScoredProduct{Product: p, Score: 1.0})
	}
	return Reply{Text: text, Products: products}
}

// handleGeneral sub-dispatches on what the shopper seems to be after:
// popular items, the category list, or a rundown of capabilities. Anything
// else gets the generic nudge toward a search.
func (e *Engine) handleGeneral(message string) Reply {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "popular") || strings.Contains(msg, "trending") || strings.Contains(msg, "best seller"):
		var popular []relevance.ScoredProduct
		for _, p := range e.catalog.TopRated(popularCount) {
			popular = append(popular, relevance.ScoredProduct{Product: p, Score: p.Rating / 5})
		}
		return Reply{
			Text:     "These are our most popular items right now:",
			Products: popular,
		}
	case strings.Contains(msg, "categor"):
		return Reply{Text: "We stock: " + categoryList() + "."}
	case strings.Contains(msg, "help") || strings.Contains(msg, "what can you do"):
		return Reply{Text: capabilityMenu + " We stock: " + categoryList() + ". Try \"show me wireless headphones under 3000\"."}
	}
	return Reply{Text: "I'm not sure I follow, but I'm happy to help you shop. Try \"show me wireless headphones under 3000\"."}
}

func categoryList() string {
	return strings.Join(catalog.Categories, ", ")
}

// cartProducts resolves the session's cart lines to catalog products,
// expanding quantities so recommendation pricing sees the real contents.
func (e *Engine) cartProducts(sessionID string) ([]catalog.Product, error) {
	items, err := e.sessions.Cart(sessionID)
	if err != nil {
		return nil, fmt.Errorf("reading cart: %w", err)
	}
	var out []catalog.Product
	for _, item := range items {
		if p, ok := e.catalog.Get(item.ProductID); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// cartSummary renders the cart grouped by category, in the catalog's
// fixed category order, followed by the grand total.
func (e *Engine) cartSummary(items []storage.CartItem) string {
	if len(items) == 0 {
		return "Your cart is empty. Want me to find something for you?"
	}

	type line struct {
		product  catalog.Product
		quantity int
	}
	byCategory := make(map[string][]line)
	total := 0
	count := 0
	for _, item := range items {
		p, ok := e.catalog.Get(item.ProductID)
		if !ok {
			continue
		}
		byCategory[p.Category] = append(byCategory[p.Category], line{product: p, quantity: item.Quantity})
		total += p.Price * item.Quantity
		count += item.Quantity
	}

	text := "Here's your cart:\n"
	for _, c := range catalog.Categories {
		lines, ok := byCategory[c]
		if !ok {
			continue
		}
		text += c + ":\n"
		for _, l := range lines {
			text += fmt.Sprintf("- %s × %d (₹%d each)\n", l.product.Name, l.quantity, l.product.Price)
		}
	}
	text += fmt.Sprintf("Total: ₹%d for %d items.", total, count)
	return text
}
