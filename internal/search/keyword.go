package search

import (
	"context"

	"shopmate/internal/catalog"
	"shopmate/internal/intent"
	"shopmate/internal/relevance"
)

// bucketStrategy answers queries that name a known product family.
type bucketStrategy struct{}

func (bucketStrategy) Name() string { return "bucket" }

func (bucketStrategy) Search(_ context.Context, query string, _ intent.EntitySet, products []catalog.Product) ([]relevance.ScoredProduct, bool) {
	return relevance.MatchBucket(query, products)
}

// genericStrategy is the terminal strategy: per-word matching over the
// whole catalog. It always answers, even if the answer is empty.
type genericStrategy struct{}

func (genericStrategy) Name() string { return "generic" }

func (genericStrategy) Search(_ context.Context, query string, _ intent.EntitySet, products []catalog.Product) ([]relevance.ScoredProduct, bool) {
	return relevance.GenericScore(query, products), true
}
