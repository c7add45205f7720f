package contract

import (
	"context"

	"poetic-camera-be/internal/entity"
	"poetic-camera-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredPoemEmbedding is a similarity-search hit with its cosine similarity.
type ScoredPoemEmbedding struct {
	Embedding  *entity.PoemEmbedding
	Similarity float64
}

type PoemEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.PoemEmbedding) error
	CreateBatch(ctx context.Context, embeddings []*entity.PoemEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByNamespace(ctx context.Context, namespace string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PoemEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PoemEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore runs a namespace-scoped cosine similarity search
	// ordered by descending similarity.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, namespace string, threshold float64) ([]*ScoredPoemEmbedding, error)
}
