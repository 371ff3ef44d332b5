// Package search answers free-text product queries through an ordered
// chain of strategies. Each strategy either produces a definitive result
// (possibly empty) or declines, in which case the next strategy runs. The
// final strategy always produces a result, so a search never fails.
package search

import (
	"context"
	"log/slog"

	"shopmate/internal/catalog"
	"shopmate/internal/intent"
	"shopmate/internal/relevance"
)

// Strategy is one way of matching a query against the catalog. The bool
// return distinguishes "no opinion" (false, try the next strategy) from a
// definitive answer, which may legitimately be empty.
type Strategy interface {
	Name() string
	Search(ctx context.Context, query string, ents intent.EntitySet, products []catalog.Product) ([]relevance.ScoredProduct, bool)
}

// Engine runs the strategy chain in order.
type Engine struct {
	strategies []Strategy
	log        *slog.Logger
}

// Completer is the generative backend an Engine consults first. It is
// satisfied by *genai.Client.
type Completer interface {
	Available() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewEngine builds the default chain: generative ranking when a backend is
// configured, then the keyword-bucket matcher, then the generic word
// matcher as the terminal strategy.
func NewEngine(completer Completer, logger *slog.Logger) *Engine {
	return &Engine{
		strategies: []Strategy{
			&aiStrategy{completer: completer, log: logger},
			bucketStrategy{},
			genericStrategy{},
		},
		log: logger,
	}
}

// Search walks the chain and returns the first definitive answer.
func (e *Engine) Search(ctx context.Context, query string, ents intent.EntitySet, products []catalog.Product) []relevance.ScoredProduct {
	for _, s := range e.strategies {
		results, ok := s.Search(ctx, query, ents, products)
		if !ok {
			continue
		}
		e.log.Debug("search strategy answered", "strategy", s.Name(), "query", query, "results", len(results))
		return results
	}
	// Unreachable: the generic strategy always answers.
	return nil
}
