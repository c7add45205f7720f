package dto

import (
	"github.com/google/uuid"
)

type AddPoemRequest struct {
	Namespace string                 `json:"namespace" validate:"required"`
	Title     string                 `json:"title" validate:"required"`
	Text      string                 `json:"text" validate:"required"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type AddPoemResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

// EmbedPoemMessage is the watermill payload for asynchronous corpus indexing.
type EmbedPoemMessage struct {
	PoemId    uuid.UUID              `json:"poem_id"`
	Namespace string                 `json:"namespace"`
	Title     string                 `json:"title"`
	Text      string                 `json:"text"`
	Metadata  map[string]interface{} `json:"metadata"`
}

type CorpusSearchResponse struct {
	Query     string         `json:"query"`
	Namespace string         `json:"namespace"`
	Results   []ReferenceDTO `json:"results"`
}

type CorpusPoemResponse struct {
	Id        uuid.UUID              `json:"id"`
	Title     string                 `json:"title"`
	Text      string                 `json:"text"`
	Namespace string                 `json:"namespace"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type CorpusListResponse struct {
	Namespace string               `json:"namespace"`
	Total     int64                `json:"total"`
	Poems     []CorpusPoemResponse `json:"poems"`
}
