package memory

import (
	"testing"

	"poetic-camera-be/pkg/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	repo := NewSessionRepository()

	session := pipeline.NewSession("abc-123")
	repo.Save(session)

	got, found := repo.Get("abc-123")
	require.True(t, found)
	// The repository hands back the same instance; callers mutate it under
	// the session lock without re-saving.
	assert.Same(t, session, got)
}

func TestSessionRepositoryMiss(t *testing.T) {
	repo := NewSessionRepository()
	_, found := repo.Get("nope")
	assert.False(t, found)
}

func TestSessionRepositoryDelete(t *testing.T) {
	repo := NewSessionRepository()
	repo.Save(pipeline.NewSession("abc-123"))
	repo.Delete("abc-123")

	_, found := repo.Get("abc-123")
	assert.False(t, found)
}
