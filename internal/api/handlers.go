// Package api exposes the assistant over HTTP and MCP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"shopmate/internal/assistant"
	"shopmate/internal/catalog"
	"shopmate/internal/intent"
	"shopmate/internal/recommend"
	"shopmate/internal/relevance"
	"shopmate/internal/session"
	"shopmate/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Deps holds what the HTTP layer needs.
type Deps struct {
	Catalog   *catalog.Catalog
	Sessions  *session.Manager
	Assistant *assistant.Engine
}

// NewHandler returns the REST API router. CORS is open because the web
// storefront is served from a different origin during development.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", handleHealth(deps))
	r.Post("/api/chat", handleChat(deps))
	r.Get("/api/chat/history", handleChatHistory(deps))
	r.Get("/api/products", handleListProducts(deps))
	r.Get("/api/products/search", handleProductSearch(deps))
	r.Get("/api/products/recommendations", handleRecommendations(deps))
	r.Get("/api/cart", handleGetCart(deps))
	r.Post("/api/cart/add", handleCartAdd(deps))
	r.Post("/api/cart/update", handleCartUpdate(deps))
	r.Post("/api/cart/remove", handleCartRemove(deps))
	r.Post("/api/cart/clear", handleCartClear(deps))
	r.Post("/api/voice/speech-to-text", handleSpeechToText)
	r.Post("/api/voice/text-to-speech", handleTextToSpeech)

	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status":   "ok",
			"products": deps.Catalog.Len(),
		})
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Message == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
			return
		}

		reply, err := deps.Assistant.HandleTurn(r.Context(), req.SessionID, req.Message)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "handling message: %v", err)
			return
		}

		writeJSON(w, struct {
			assistant.Reply
			SessionID string `json:"session_id"`
		}{Reply: reply, SessionID: session.Normalize(req.SessionID)})
	}
}

func handleChatHistory(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		turns, err := deps.Assistant.History(r.URL.Query().Get("session_id"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading history: %v", err)
			return
		}
		if turns == nil {
			turns = []storage.Turn{}
		}
		writeJSON(w, turns)
	}
}

func handleListProducts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products := deps.Catalog.All()
		if c := r.URL.Query().Get("category"); c != "" {
			filtered := products[:0:0]
			for _, p := range products {
				if p.Category == c {
					filtered = append(filtered, p)
				}
			}
			products = filtered
		}
		writeJSON(w, map[string]any{"products": products, "count": len(products)})
	}
}

func handleProductSearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")

		ents := intent.ExtractEntities(q)
		if c := r.URL.Query().Get("category"); c != "" {
			ents.Category = c
		}
		if v := r.URL.Query().Get("max_price"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "max_price must be an integer")
				return
			}
			ents.MaxPrice = &n
		}
		if v := r.URL.Query().Get("min_price"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "min_price must be an integer")
				return
			}
			ents.MinPrice = &n
		}

		results := relevance.Rank(q, ents, deps.Catalog.All())
		if results == nil {
			results = []relevance.ScoredProduct{}
		}
		writeJSON(w, map[string]any{"products": results, "count": len(results)})
	}
}

func handleRecommendations(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := r.URL.Query().Get("product_id")
		p, ok := deps.Catalog.Get(productID)
		if !ok {
			httpError(w, http.StatusNotFound, "not_found", "product %q not found", productID)
			return
		}

		cart, err := cartProducts(deps, r.URL.Query().Get("session_id"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading cart: %v", err)
			return
		}

		recs := recommend.Generate(p, cart, deps.Catalog.All())
		if recs == nil {
			recs = []recommend.Recommendation{}
		}
		writeJSON(w, map[string]any{"recommendations": recs, "count": len(recs)})
	}
}

type cartLine struct {
	catalog.Product
	Quantity  int `json:"quantity"`
	LineTotal int `json:"line_total"`
}

func handleGetCart(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := deps.Sessions.Cart(r.URL.Query().Get("session_id"))
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "reading cart: %v", err)
			return
		}
		writeJSON(w, cartView(deps, items))
	}
}

type cartMutation struct {
	SessionID string `json:"session_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func decodeCartMutation(w http.ResponseWriter, r *http.Request, requireProduct bool) (cartMutation, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	var req cartMutation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return cartMutation{}, false
	}
	if requireProduct && req.ProductID == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "product_id is required")
		return cartMutation{}, false
	}
	return req, true
}

func handleCartAdd(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeCartMutation(w, r, true)
		if !ok {
			return
		}
		if _, found := deps.Catalog.Get(req.ProductID); !found {
			httpError(w, http.StatusNotFound, "not_found", "product %q not found", req.ProductID)
			return
		}
		if req.Quantity < 1 {
			req.Quantity = 1
		}

		if err := deps.Sessions.AddToCart(req.SessionID, req.ProductID, req.Quantity); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "adding to cart: %v", err)
			return
		}
		respondWithCart(w, deps, req.SessionID)
	}
}

func handleCartUpdate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeCartMutation(w, r, true)
		if !ok {
			return
		}

		err := deps.Sessions.SetQuantity(req.SessionID, req.ProductID, req.Quantity)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "product %q is not in the cart", req.ProductID)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "updating cart: %v", err)
			return
		}
		respondWithCart(w, deps, req.SessionID)
	}
}

func handleCartRemove(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeCartMutation(w, r, true)
		if !ok {
			return
		}

		err := deps.Sessions.RemoveFromCart(req.SessionID, req.ProductID)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "product %q is not in the cart", req.ProductID)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "removing from cart: %v", err)
			return
		}
		respondWithCart(w, deps, req.SessionID)
	}
}

func handleCartClear(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeCartMutation(w, r, false)
		if !ok {
			return
		}
		if err := deps.Sessions.ClearCart(req.SessionID); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "clearing cart: %v", err)
			return
		}
		respondWithCart(w, deps, req.SessionID)
	}
}

// The voice endpoints are mocks: they validate input and return fixed
// payloads until real speech models are wired in.
func handleSpeechToText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	if _, _, err := r.FormFile("audio"); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "no audio file provided")
		return
	}

	writeJSON(w, map[string]any{
		"text":       "I need wireless headphones under 3000 rupees",
		"confidence": 0.95,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
}

func handleTextToSpeech(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "no text provided")
		return
	}

	writeJSON(w, map[string]any{
		"audio_url": "/api/audio/mock_response.wav",
		"text":      req.Text,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func respondWithCart(w http.ResponseWriter, deps Deps, sessionID string) {
	items, err := deps.Sessions.Cart(sessionID)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "reading cart: %v", err)
		return
	}
	writeJSON(w, cartView(deps, items))
}

func cartView(deps Deps, items []storage.CartItem) map[string]any {
	lines := make([]cartLine, 0, len(items))
	total := 0
	count := 0
	for _, item := range items {
		p, ok := deps.Catalog.Get(item.ProductID)
		if !ok {
			continue
		}
		lines = append(lines, cartLine{Product: p, Quantity: item.Quantity, LineTotal: p.Price * item.Quantity})
		total += p.Price * item.Quantity
		count += item.Quantity
	}
	return map[string]any{
		"items": lines,
		"total": total,
		"count": count,
	}
}

func cartProducts(deps Deps, sessionID string) ([]catalog.Product, error) {
	items, err := deps.Sessions.Cart(sessionID)
	if err != nil {
		return nil, err
	}
	var out []catalog.Product
	for _, item := range items {
		if p, ok := deps.Catalog.Get(item.ProductID); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
