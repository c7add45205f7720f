package rerank

import (
	"context"
	"log"

	"poetic-camera-be/pkg/store"
)

// Result is one scored document position returned by a rerank backend.
// Index points into the document slice that was submitted, not into any
// content-matched copy, so duplicate texts stay unambiguous.
type Result struct {
	Index int
	Score float64
}

// Backend scores a set of document texts against a query and returns the
// strongest matches in descending relevance order.
type Backend interface {
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]Result, error)
}

// Selector narrows a loosely-relevant candidate pool to a strictly ordered
// top-K subset. Backend failures never escape: the selector degrades to the
// retriever's own order.
type Selector struct {
	backend Backend
	logger  *log.Logger
}

func NewSelector(backend Backend, logger *log.Logger) *Selector {
	return &Selector{backend: backend, logger: logger}
}

// Select reranks candidates by true semantic relevance to the query.
// The result is at most topK long and never contains indices outside the
// input range. An empty input short-circuits without calling the backend.
func (s *Selector) Select(ctx context.Context, query string, candidates []store.Candidate, topK int) []store.Candidate {
	if len(candidates) == 0 {
		return []store.Candidate{}
	}

	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = c.Text
	}

	results, err := s.backend.Rerank(ctx, query, docs, topK)
	if err != nil {
		s.logger.Printf("[WARN] Rerank backend failed, falling back to retriever order: %v", err)
		return fallback(candidates, topK)
	}

	ranked := make([]store.Candidate, 0, topK)
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(candidates) {
			s.logger.Printf("[WARN] Rerank returned out-of-range index %d (have %d candidates)", res.Index, len(candidates))
			continue
		}
		if len(ranked) == topK {
			break
		}
		c := candidates[res.Index]
		score := res.Score
		c.RelevanceScore = &score
		ranked = append(ranked, c)
	}

	// A backend that answers with nothing usable is as good as a failed one.
	if len(ranked) == 0 {
		s.logger.Printf("[WARN] Rerank returned no usable indices, falling back to retriever order")
		return fallback(candidates, topK)
	}

	return ranked
}

// fallback treats the input order as the retriever's best-guess ranking.
// No relevance scores are attached.
func fallback(candidates []store.Candidate, topK int) []store.Candidate {
	if topK > len(candidates) {
		topK = len(candidates)
	}
	out := make([]store.Candidate, topK)
	copy(out, candidates[:topK])
	return out
}
