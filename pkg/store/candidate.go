package store

// Candidate is a corpus poem drawn from retrieval. Immutable once retrieved;
// the reranker works on copies when it attaches relevance scores.
type Candidate struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Text     string                 `json:"text"`
	Score    float32                `json:"score"` // retriever cosine similarity
	Metadata map[string]interface{} `json:"metadata"`

	// RelevanceScore is set only after a successful rerank pass.
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}
