package rerank

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"poetic-camera-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	results []Result
	err     error
	calls   int
}

func (s *stubBackend) Rerank(_ context.Context, _ string, _ []string, _ int) ([]Result, error) {
	s.calls++
	return s.results, s.err
}

func candidates(texts ...string) []store.Candidate {
	out := make([]store.Candidate, len(texts))
	for i, text := range texts {
		out[i] = store.Candidate{ID: text, Text: text, Score: 1.0 - float32(i)*0.1}
	}
	return out
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestSelectReordersByBackendRanking(t *testing.T) {
	backend := &stubBackend{results: []Result{
		{Index: 2, Score: 0.98},
		{Index: 0, Score: 0.75},
		{Index: 4, Score: 0.41},
	}}
	s := NewSelector(backend, testLogger())

	input := candidates("a", "b", "c", "d", "e")
	got := s.Select(context.Background(), "query", input, 3)

	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "e", got[2].ID)

	require.NotNil(t, got[0].RelevanceScore)
	assert.InDelta(t, 0.98, *got[0].RelevanceScore, 1e-9)
	// The retriever's similarity score stays intact alongside the new one.
	assert.Equal(t, input[2].Score, got[0].Score)
}

func TestSelectFallsBackOnBackendError(t *testing.T) {
	backend := &stubBackend{err: errors.New("quota exhausted")}
	s := NewSelector(backend, testLogger())

	input := candidates("a", "b", "c", "d", "e")
	got := s.Select(context.Background(), "query", input, 3)

	// Input order, truncated, no relevance scores: callers cannot tell a
	// degraded result from a ranked one except by the missing scores.
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, input[i].ID, c.ID)
		assert.Nil(t, c.RelevanceScore)
	}
}

func TestSelectEmptyInputSkipsBackend(t *testing.T) {
	backend := &stubBackend{}
	s := NewSelector(backend, testLogger())

	got := s.Select(context.Background(), "query", nil, 3)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 0, backend.calls)
}

func TestSelectSkipsOutOfRangeIndices(t *testing.T) {
	backend := &stubBackend{results: []Result{
		{Index: 7, Score: 0.99},
		{Index: -1, Score: 0.98},
		{Index: 1, Score: 0.60},
	}}
	s := NewSelector(backend, testLogger())

	got := s.Select(context.Background(), "query", candidates("a", "b", "c"), 3)

	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestSelectAllIndicesUnusableFallsBack(t *testing.T) {
	backend := &stubBackend{results: []Result{{Index: 42, Score: 0.9}}}
	s := NewSelector(backend, testLogger())

	input := candidates("a", "b")
	got := s.Select(context.Background(), "query", input, 3)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Nil(t, got[0].RelevanceScore)
}

func TestSelectTruncatesToTopK(t *testing.T) {
	backend := &stubBackend{results: []Result{
		{Index: 0, Score: 0.9},
		{Index: 1, Score: 0.8},
		{Index: 2, Score: 0.7},
		{Index: 3, Score: 0.6},
	}}
	s := NewSelector(backend, testLogger())

	got := s.Select(context.Background(), "query", candidates("a", "b", "c", "d"), 2)
	assert.Len(t, got, 2)
}

func TestFallbackShorterThanTopK(t *testing.T) {
	backend := &stubBackend{err: errors.New("down")}
	s := NewSelector(backend, testLogger())

	got := s.Select(context.Background(), "query", candidates("only"), 3)
	require.Len(t, got, 1)
	assert.Equal(t, "only", got[0].ID)
}
