package implementation

import (
	"context"
	"errors"

	"poetic-camera-be/internal/entity"
	"poetic-camera-be/internal/mapper"
	"poetic-camera-be/internal/model"
	"poetic-camera-be/internal/repository/contract"
	"poetic-camera-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PoemEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PoemEmbeddingMapper
}

func NewPoemEmbeddingRepository(db *gorm.DB) contract.PoemEmbeddingRepository {
	return &PoemEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewPoemEmbeddingMapper(),
	}
}

func (r *PoemEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PoemEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.PoemEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *PoemEmbeddingRepositoryImpl) CreateBatch(ctx context.Context, embeddings []*entity.PoemEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.PoemEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

// Delete removes a row for real. Embeddings are derived data; a re-index
// recreates the same primary key, which a soft-deleted row would block.
func (r *PoemEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&model.PoemEmbedding{}, id).Error
}

func (r *PoemEmbeddingRepositoryImpl) DeleteByNamespace(ctx context.Context, namespace string) error {
	return r.db.WithContext(ctx).Unscoped().Where("namespace = ?", namespace).Delete(&model.PoemEmbedding{}).Error
}

func (r *PoemEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PoemEmbedding, error) {
	var m model.PoemEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PoemEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PoemEmbedding, error) {
	var models []*model.PoemEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *PoemEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.PoemEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns embeddings with similarity scores, scoped to
// one poet's namespace and filtered by threshold.
func (r *PoemEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, namespace string, threshold float64) ([]*contract.ScoredPoemEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding_value <=> query_vector) = cosine_similarity
	type result struct {
		model.PoemEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("poem_embeddings").
		Select("poem_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("namespace = ?", namespace).
		Where("deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredPoemEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredPoemEmbedding{
			Embedding:  r.mapper.ToEntity(&res.PoemEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
