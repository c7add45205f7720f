package service

import (
	"context"
	"fmt"

	"poetic-camera-be/internal/repository/unitofwork"
	"poetic-camera-be/pkg/embedding"
	"poetic-camera-be/pkg/pipeline"
	"poetic-camera-be/pkg/store"
)

// vectorRetriever embeds the query narrative and runs a namespace-scoped
// cosine similarity search against the poem corpus.
type vectorRetriever struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	threshold         float64
}

func NewVectorRetriever(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	threshold float64,
) pipeline.Retriever {
	return &vectorRetriever{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		threshold:         threshold,
	}
}

func (r *vectorRetriever) Search(ctx context.Context, query string, namespace string, topK int) ([]store.Candidate, error) {
	res, err := r.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	hits, err := uow.PoemEmbeddingRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, topK, namespace, r.threshold)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	candidates := make([]store.Candidate, 0, len(hits))
	for _, hit := range hits {
		candidates = append(candidates, store.Candidate{
			ID:       hit.Embedding.Id.String(),
			Title:    hit.Embedding.Title,
			Text:     hit.Embedding.Document,
			Score:    float32(hit.Similarity),
			Metadata: hit.Embedding.Metadata,
		})
	}
	return candidates, nil
}
