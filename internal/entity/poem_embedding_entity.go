package entity

import (
	"time"

	"github.com/google/uuid"
)

type PoemEmbedding struct {
	Id             uuid.UUID
	Title          string
	Document       string
	SemanticString string
	Namespace      string
	Metadata       map[string]interface{}
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
