package mapper

import (
	"time"

	"poetic-camera-be/internal/entity"
	"poetic-camera-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PoemEmbeddingMapper struct{}

func NewPoemEmbeddingMapper() *PoemEmbeddingMapper {
	return &PoemEmbeddingMapper{}
}

func (m *PoemEmbeddingMapper) ToEntity(e *model.PoemEmbedding) *entity.PoemEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.PoemEmbedding{
		Id:             e.Id,
		Title:          e.Title,
		Document:       e.Document,
		SemanticString: e.SemanticString,
		Namespace:      e.Namespace,
		Metadata:       map[string]interface{}(e.Metadata),
		EmbeddingValue: e.EmbeddingValue.Slice(),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      e.DeletedAt.Valid,
	}
}

func (m *PoemEmbeddingMapper) ToModel(e *entity.PoemEmbedding) *model.PoemEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.PoemEmbedding{
		Id:             e.Id,
		Title:          e.Title,
		Document:       e.Document,
		SemanticString: e.SemanticString,
		Namespace:      e.Namespace,
		Metadata:       datatypes.JSONMap(e.Metadata),
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *PoemEmbeddingMapper) ToEntities(embeddings []*model.PoemEmbedding) []*entity.PoemEmbedding {
	entities := make([]*entity.PoemEmbedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
