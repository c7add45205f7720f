package service

import (
	"context"
	"encoding/json"
	"testing"

	"poetic-camera-be/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestCorpusAddQueuesEmbedMessage(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewCorpusService(pub, nil, nil)

	res, err := svc.Add(context.Background(), &dto.AddPoemRequest{
		Namespace: "dickinson",
		Title:     "Hope",
		Text:      "Hope is the thing with feathers",
		Metadata:  map[string]interface{}{"mood": "hopeful"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.Id)
	assert.Equal(t, "queued", res.Status)

	require.Len(t, pub.payloads, 1)
	var msg dto.EmbedPoemMessage
	require.NoError(t, json.Unmarshal(pub.payloads[0], &msg))
	assert.Equal(t, res.Id, msg.PoemId)
	assert.Equal(t, "dickinson", msg.Namespace)
	assert.Equal(t, "Hope", msg.Title)
}

func TestBuildSemanticStringFromMetadata(t *testing.T) {
	got := BuildSemanticString("Untitled", "full poem text here", map[string]interface{}{
		"mood":           "melancholic",
		"themes":         []interface{}{"death", "nature"},
		"concrete_nouns": []interface{}{"fly", "window"},
	})
	assert.Equal(t, "A melancholic poem about death, nature featuring imagery of fly, window.", got)
}

func TestBuildSemanticStringPartialMetadata(t *testing.T) {
	got := BuildSemanticString("Untitled", "text", map[string]interface{}{
		"themes": []interface{}{"freedom"},
	})
	assert.Equal(t, "A poem about freedom.", got)
}

func TestBuildSemanticStringFallsBackToOpeningLines(t *testing.T) {
	got := BuildSemanticString("The Tyger", "Tyger Tyger, burning bright, In the forests of the night", nil)
	assert.Contains(t, got, "The Tyger")
	assert.Contains(t, got, "Tyger Tyger, burning bright")
}

func TestBuildSemanticStringTruncatesLongPoems(t *testing.T) {
	long := ""
	for i := 0; i < 100; i++ {
		long += "word "
	}
	got := BuildSemanticString("Long", long, map[string]interface{}{})
	// 40 words plus the title.
	assert.LessOrEqual(t, len(got), len("Long. ")+41*5)
}
