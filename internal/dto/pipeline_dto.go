package dto

import (
	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

// ReferenceDTO is one selected corpus poem shown alongside the narrative.
// RelevanceScore is present only when the rerank stage succeeded.
type ReferenceDTO struct {
	Id             string                 `json:"id"`
	Title          string                 `json:"title"`
	Text           string                 `json:"text"`
	Score          float32                `json:"score"`
	RelevanceScore *float64               `json:"relevance_score,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

type AnalyzeResponse struct {
	SessionId  uuid.UUID      `json:"session_id"`
	InputId    string         `json:"input_id"`
	Narrative  string         `json:"narrative"`
	References []ReferenceDTO `json:"references"`
	Stage      string         `json:"stage"`
}

type GeneratePoemRequest struct {
	Persona     string  `json:"persona" validate:"required"`
	Temperature float64 `json:"temperature" validate:"omitempty,gte=0.1,lte=1.0"`
	WithAudio   bool    `json:"with_audio"`
}

type GeneratePoemResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Persona   string    `json:"persona"`
	Poem      string    `json:"poem"`
	HasAudio  bool      `json:"has_audio"`
	Stage     string    `json:"stage"`
}

type PersonaResponse struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Namespace   string `json:"namespace"`
}

type SessionStateResponse struct {
	SessionId    uuid.UUID      `json:"session_id"`
	Stage        string         `json:"stage"`
	InputId      string         `json:"input_id,omitempty"`
	Narrative    string         `json:"narrative,omitempty"`
	References   []ReferenceDTO `json:"references,omitempty"`
	Poem         string         `json:"poem,omitempty"`
	HasAudio     bool           `json:"has_audio"`
	AudioCapable bool           `json:"audio_capable"`
}
