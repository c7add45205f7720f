package llmjudge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"poetic-camera-be/pkg/llm"
	"poetic-camera-be/pkg/rerank"
)

// Backend asks a chat model to pick the most relevant documents. Slower and
// noisier than a cross-encoder API, but it runs anywhere an LLM does.
type Backend struct {
	provider llm.LLMProvider
}

var _ rerank.Backend = &Backend{}

func NewBackend(provider llm.LLMProvider) *Backend {
	return &Backend{provider: provider}
}

const systemPrompt = `You rank documents by relevance to a query.
Reply with ONLY a JSON array of zero-based document indices, most relevant first.
Example: [4, 0, 2]
No prose, no markdown fences.`

func (b *Backend) Rerank(ctx context.Context, query string, documents []string, topN int) ([]rerank.Result, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "QUERY:\n%s\n\nDOCUMENTS:\n", query)
	for i, doc := range documents {
		// Long poems blow the context window; the opening lines carry
		// enough signal for relevance.
		if len(doc) > 600 {
			doc = doc[:600]
		}
		fmt.Fprintf(&sb, "[%d] %s\n\n", i, doc)
	}
	fmt.Fprintf(&sb, "Return the %d most relevant indices.", topN)

	reply, err := b.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: sb.String()},
	}, llm.WithTemperature(0.0))
	if err != nil {
		return nil, fmt.Errorf("llm rerank call failed: %w", err)
	}

	indices, err := parseIndices(reply)
	if err != nil {
		return nil, fmt.Errorf("llm rerank reply unusable: %w", err)
	}

	results := make([]rerank.Result, 0, len(indices))
	for rank, idx := range indices {
		if rank == topN {
			break
		}
		// Synthetic score: the judge gives order, not calibrated scores.
		results = append(results, rerank.Result{
			Index: idx,
			Score: 1.0 - float64(rank)/float64(topN),
		})
	}
	return results, nil
}

// parseIndices tolerates markdown fences and surrounding chatter as long as a
// JSON array is in there somewhere.
func parseIndices(reply string) ([]int, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in reply: %q", reply)
	}
	var indices []int
	if err := json.Unmarshal([]byte(reply[start:end+1]), &indices); err != nil {
		return nil, err
	}
	return indices, nil
}
