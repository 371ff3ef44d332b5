package search

import (
	"context"
	"log/slog"

	"shopmate/internal/catalog"
	"shopmate/internal/intent"
	"shopmate/internal/relevance"
)

const (
	aiScoreStep  = 0.1
	aiScoreFloor = 0.05
)

// aiStrategy asks the generative backend to rank the catalog. Any failure
// is logged and turned into "no opinion" so the deterministic strategies
// take over; the backend must never make search worse than no backend.
type aiStrategy struct {
	completer Completer
	log       *slog.Logger
}

func (s *aiStrategy) Name() string { return "ai" }

func (s *aiStrategy) Search(ctx context.Context, query string, _ intent.EntitySet, products []catalog.Product) ([]relevance.ScoredProduct, bool) {
	if s.completer == nil || !s.completer.Available() {
		return nil, false
	}

	raw, err := s.completer.Complete(ctx, buildPrompt(query, products))
	if err != nil {
		s.log.Debug("generative search unavailable", "error", err)
		return nil, false
	}

	ids, ok := parseIDList(raw)
	if !ok {
		s.log.Debug("generative search returned unparseable output", "output", raw)
		return nil, false
	}

	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// Rank position decides the score; ids the catalog doesn't know are
	// dropped without shifting the scores of later entries.
	results := make([]relevance.ScoredProduct, 0, len(ids))
	for i, id := range ids {
		p, known := byID[id]
		if !known {
			continue
		}
		score := 1.0 - aiScoreStep*float64(i)
		if score < aiScoreFloor {
			score = aiScoreFloor
		}
		results = append(results, relevance.ScoredProduct{Product: p, Score: score})
	}

	// Zero usable ids is treated as no opinion, not a verdict: the
	// deterministic matchers still get their shot at the query.
	if len(results) == 0 {
		s.log.Debug("generative search yielded no usable ids", "output", raw)
		return nil, false
	}
	return results, true
}
