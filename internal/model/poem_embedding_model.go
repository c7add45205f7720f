package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PoemEmbedding struct {
	Id             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title          string            `gorm:"type:text"`
	Document       string            `gorm:"type:text"` // full poem text
	SemanticString string            `gorm:"type:text"` // the search-optimized string that was embedded
	Namespace      string            `gorm:"type:text;not null;index"` // corpus partition, one per poet
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	EmbeddingValue pgvector.Vector   `gorm:"type:vector(768)"` // text-embedding-004 / jina-v2-base-en dimensions
	CreatedAt      time.Time         `gorm:"autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt    `gorm:"index"`
}

func (PoemEmbedding) TableName() string {
	return "poem_embeddings"
}
