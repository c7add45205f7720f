package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"poetic-camera-be/pkg/llm"
	"poetic-camera-be/pkg/poet"
	"poetic-camera-be/pkg/rerank"
	"poetic-camera-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	narrative string
	err       error
	calls     int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ []byte, _ string) (string, error) {
	f.calls++
	return f.narrative, f.err
}

type fakeRetriever struct {
	candidates []store.Candidate
	err        error
	calls      int
	lastNs     string
}

func (f *fakeRetriever) Search(_ context.Context, _ string, namespace string, _ int) ([]store.Candidate, error) {
	f.calls++
	f.lastNs = namespace
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

type passthroughBackend struct{}

func (passthroughBackend) Rerank(_ context.Context, _ string, docs []string, topN int) ([]rerank.Result, error) {
	results := make([]rerank.Result, 0, topN)
	for i := 0; i < topN && i < len(docs); i++ {
		results = append(results, rerank.Result{Index: i, Score: 0.9 - float64(i)*0.1})
	}
	return results, nil
}

type stubLLM struct {
	response string
	err      error
	calls    int
}

func (s *stubLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, nil, opts...)
}

type fakeSynth struct {
	audio []byte
	err   error
	calls int
}

func (f *fakeSynth) Synthesize(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

func corpusOf(n int) []store.Candidate {
	out := make([]store.Candidate, n)
	for i := range out {
		out[i] = store.Candidate{
			ID:    fmt.Sprintf("poem-%d", i),
			Title: fmt.Sprintf("Poem %d", i),
			Text:  fmt.Sprintf("verse number %d", i),
			Score: 1.0 - float32(i)*0.01,
		}
	}
	return out
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestOrchestrator(analyzer *fakeAnalyzer, retriever *fakeRetriever, gen *stubLLM, synth *fakeSynth) *Orchestrator {
	selector := rerank.NewSelector(passthroughBackend{}, discard())
	generator := poet.NewGenerator(gen, discard())
	if synth == nil {
		return NewOrchestrator(analyzer, retriever, selector, generator, nil, discard())
	}
	return NewOrchestrator(analyzer, retriever, selector, generator, synth, discard())
}

func TestEnsureNarrativeMemoizesPerInput(t *testing.T) {
	analyzer := &fakeAnalyzer{narrative: "A quiet beach at dusk."}
	retriever := &fakeRetriever{candidates: corpusOf(15)}
	o := newTestOrchestrator(analyzer, retriever, &stubLLM{response: "a poem"}, nil)

	session := NewSession("s1")
	session.Lock()
	defer session.Unlock()

	o.OnNewInput(session, "beach.jpg", 1024)

	for i := 0; i < 3; i++ {
		narrative, err := o.EnsureNarrative(context.Background(), session, []byte("img"), "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, "A quiet beach at dusk.", narrative)
	}
	assert.Equal(t, 1, analyzer.calls, "vision must run once per input identity")
	assert.Equal(t, StageVisionDone, session.Stage)
}

func TestNewInputIdentityResetsSession(t *testing.T) {
	analyzer := &fakeAnalyzer{narrative: "narrative"}
	retriever := &fakeRetriever{candidates: corpusOf(15)}
	o := newTestOrchestrator(analyzer, retriever, &stubLLM{response: "a poem"}, nil)

	session := NewSession("s1")
	session.Lock()
	defer session.Unlock()

	o.OnNewInput(session, "beach.jpg", 1024)
	_, err := o.EnsureNarrative(context.Background(), session, []byte("img"), "image/jpeg")
	require.NoError(t, err)
	_, err = o.EnsureReferences(context.Background(), session, "dickinson")
	require.NoError(t, err)
	_, err = o.GeneratePoem(context.Background(), session, poet.NewDefaultRegistry().Default(), 0.5)
	require.NoError(t, err)

	// Same identity: nothing is invalidated.
	o.OnNewInput(session, "beach.jpg", 1024)
	assert.True(t, session.HasNarrative())
	assert.True(t, session.HasPoem())

	// Different identity: every cached result is wiped.
	o.OnNewInput(session, "forest.jpg", 2048)
	assert.False(t, session.HasNarrative())
	assert.False(t, session.HasReferences())
	assert.False(t, session.HasPoem())
	assert.Equal(t, InputIdentity("forest.jpg_2048"), session.LastInputIdentity)
	assert.Equal(t, StageIdle, session.Stage)
}

func TestVisionFailureLatchesUntilNewInput(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("503 from upstream")}
	retriever := &fakeRetriever{candidates: corpusOf(15)}
	o := newTestOrchestrator(analyzer, retriever, &stubLLM{response: "a poem"}, nil)

	session := NewSession("s1")
	session.Lock()
	defer session.Unlock()

	o.OnNewInput(session, "beach.jpg", 1024)
	_, err := o.EnsureNarrative(context.Background(), session, []byte("img"), "image/jpeg")

	var fatal *FatalStageError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, StageVisionPending, fatal.Stage)
	assert.Equal(t, StageFailed, session.Stage)

	// Retrying without a new input does not re-run vision.
	_, err = o.EnsureNarrative(context.Background(), session, []byte("img"), "image/jpeg")
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, 1, analyzer.calls)

	// Downstream stages refuse to run.
	_, err = o.EnsureReferences(context.Background(), session, "dickinson")
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, 0, retriever.calls)

	// A new input clears the latch.
	analyzer.err = nil
	analyzer.narrative = "a new scene"
	o.OnNewInput(session, "other.jpg", 99)
	narrative, err := o.EnsureNarrative(context.Background(), session, []byte("img2"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "a new scene", narrative)
}

func TestErrorPrefixedNarrativeIsFatal(t *testing.T) {
	analyzer := &fakeAnalyzer{narrative: "ERROR: model overloaded"}
	o := newTestOrchestrator(analyzer, &fakeRetriever{}, &stubLLM{response: "a poem"}, nil)

	session := NewSession("s1")
	session.Lock()
	defer session.Unlock()

	o.OnNewInput(session, "beach.jpg", 1024)
	_, err := o.EnsureNarrative(context.Background(), session, []byte("img"), "image/jpeg")

	var fatal *FatalStageError
	require.ErrorAs(t, err, &fatal)
	assert.False(t, session.HasNarrative())
	assert.Equal(t, StageVisionPending, session.FailedStage)
}

func TestRetrievalFailureIsRetryable(t *testing.T) {
	analyzer := &fakeAnalyzer{narrative: "narrative"}
	retriever := &fakeRetriever{err: errors.New("db down")}
	o := newTestOrchestrator(analyzer, retriever, &stubLLM{response: "a poem"}, nil)

	session := NewSession("s1")
	session.Lock()
	defer session.Unlock()

	o.OnNewInput(session, "beach.jpg", 1024)
	_, err := o.EnsureNarrative(context.Background(), session, []byte("img"), "image/jpeg")
	require.NoError(t, err)

	_, err = o.EnsureReferences(context.Background(), session, "dickinson")
	require.Error(t, err)
	var fatal *FatalStageError
	assert.False(t, errors.As(err, &fatal), "retrieval failure must not latch")

	// The narrative survives and retrieval can be retried on the same input.
	retriever.err = nil
	retriever.candidates = corpusOf(15)
	refs, err := o.EnsureReferences(context.Background(), session, "dickinson")
	require.NoError(t, err)
	assert.Len(t, refs, SelectionTopK)
	assert.Equal(t, 1, analyzer.calls)
}

func TestEnsureReferencesScopesNamespaceAndMemoizes(t *testing.T) {
	analyzer := &fakeAnalyzer{narrative: "narrative"}
	retriever := &fakeRetriever{candidates: corpusOf(15)}
	o := newTestOrchestrator(analyzer, retriever, &stubLLM{response: "a poem"}, nil)

	session := NewSession("s1")
	session.Lock()
	defer session.Unlock()

	o.OnNewInput(session, "beach.jpg", 1024)
	_, err := o.EnsureNarrative(context.Background(), session, []byte("img"), "image/jpeg")
	require.NoError(t, err)

	refs, err := o.EnsureReferences(context.Background(), session, "whitman")
	require.NoError(t, err)
	assert.Equal(t, "whitman", retriever.lastNs)
	assert.Len(t, refs, SelectionTopK)
	assert.Equal(t, StageAwaitingGenerate, session.Stage)

	// Cached: a second call does not hit the retriever again.
	_, err = o.EnsureReferences(context.Background(), session, "whitman")
	require.NoError(t, err)
	assert.Equal(t, 1, retriever.calls)
}

func TestGeneratePoemOverwritesAndInvalidatesAudio(t *testing.T) {
	analyzer := &fakeAnalyzer{narrative: "narrative"}
	retriever := &fakeRetriever{candidates: corpusOf(15)}
	gen := &stubLLM{response: "first draft"}
	synth := &fakeSynth{audio: []byte("mp3-bytes")}
	o := newTestOrchestrator(analyzer, retriever, gen, synth)

	session := NewSession("s1")
	session.Lock()
	defer session.Unlock()

	o.OnNewInput(session, "beach.jpg", 1024)
	_, err := o.EnsureNarrative(context.Background(), session, []byte("img"), "image/jpeg")
	require.NoError(t, err)
	_, err = o.EnsureReferences(context.Background(), session, "dickinson")
	require.NoError(t, err)

	persona := poet.NewDefaultRegistry().Default()

	poem, err := o.GeneratePoem(context.Background(), session, persona, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "first draft", poem)

	audio := o.SynthesizeAudio(context.Background(), session)
	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, StageAudioDone, session.Stage)

	// Regenerating with a different temperature reuses the cached narrative
	// and references, replaces the poem, and drops the stale audio.
	gen.response = "second draft"
	poem, err = o.GeneratePoem(context.Background(), session, persona, 0.9)
	require.NoError(t, err)
	assert.Equal(t, "second draft", poem)
	assert.Nil(t, session.Audio)
	assert.Equal(t, 1, analyzer.calls)
	assert.Equal(t, 1, retriever.calls)
}

func TestGenerationFailureYieldsPlaceholder(t *testing.T) {
	analyzer := &fakeAnalyzer{narrative: "narrative"}
	retriever := &fakeRetriever{candidates: corpusOf(15)}
	gen := &stubLLM{err: errors.New("rate limited")}
	o := newTestOrchestrator(analyzer, retriever, gen, nil)

	session := NewSession("s1")
	session.Lock()
	defer session.Unlock()

	o.OnNewInput(session, "beach.jpg", 1024)
	_, err := o.EnsureNarrative(context.Background(), session, []byte("img"), "image/jpeg")
	require.NoError(t, err)
	_, err = o.EnsureReferences(context.Background(), session, "dickinson")
	require.NoError(t, err)

	poem, err := o.GeneratePoem(context.Background(), session, poet.NewDefaultRegistry().Default(), 0.5)
	require.NoError(t, err, "generation failures degrade, they do not error")
	assert.Equal(t, poet.PlaceholderPoem, poem)
	assert.Equal(t, StageGenerationDone, session.Stage)
}

func TestGeneratePoemRequiresReferences(t *testing.T) {
	o := newTestOrchestrator(&fakeAnalyzer{narrative: "n"}, &fakeRetriever{}, &stubLLM{response: "p"}, nil)

	session := NewSession("s1")
	session.Lock()
	defer session.Unlock()

	_, err := o.GeneratePoem(context.Background(), session, poet.NewDefaultRegistry().Default(), 0.5)
	assert.Error(t, err)
}

func TestAudioFailureKeepsPoem(t *testing.T) {
	analyzer := &fakeAnalyzer{narrative: "narrative"}
	retriever := &fakeRetriever{candidates: corpusOf(15)}
	synth := &fakeSynth{err: errors.New("voice service down")}
	o := newTestOrchestrator(analyzer, retriever, &stubLLM{response: "the poem"}, synth)

	session := NewSession("s1")
	session.Lock()
	defer session.Unlock()

	o.OnNewInput(session, "beach.jpg", 1024)
	_, err := o.EnsureNarrative(context.Background(), session, []byte("img"), "image/jpeg")
	require.NoError(t, err)
	_, err = o.EnsureReferences(context.Background(), session, "dickinson")
	require.NoError(t, err)
	_, err = o.GeneratePoem(context.Background(), session, poet.NewDefaultRegistry().Default(), 0.5)
	require.NoError(t, err)

	audio := o.SynthesizeAudio(context.Background(), session)
	assert.Nil(t, audio)
	assert.Equal(t, "the poem", session.Poem)
	assert.Equal(t, StageGenerationDone, session.Stage)
}

func TestSynthesizeAudioWithoutCapability(t *testing.T) {
	o := newTestOrchestrator(&fakeAnalyzer{narrative: "n"}, &fakeRetriever{candidates: corpusOf(15)}, &stubLLM{response: "p"}, nil)

	session := NewSession("s1")
	session.Lock()
	defer session.Unlock()

	session.Poem = "a poem"
	assert.Nil(t, o.SynthesizeAudio(context.Background(), session))
	assert.False(t, o.AudioAvailable())
}

func TestResetClearsLatchedFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("boom")}
	o := newTestOrchestrator(analyzer, &fakeRetriever{}, &stubLLM{response: "p"}, nil)

	session := NewSession("s1")
	session.Lock()
	defer session.Unlock()

	o.OnNewInput(session, "beach.jpg", 1024)
	_, _ = o.EnsureNarrative(context.Background(), session, []byte("img"), "image/jpeg")
	require.Equal(t, StageVisionPending, session.FailedStage)

	o.Reset(session)
	assert.Equal(t, Stage(""), session.FailedStage)
	assert.Equal(t, StageIdle, session.Stage)
	assert.Equal(t, InputIdentity(""), session.LastInputIdentity)
}

func TestInputIdentityFormat(t *testing.T) {
	assert.Equal(t, InputIdentity("beach.jpg_204800"), NewInputIdentity("beach.jpg", 204800))
	// Weak by design: same name and size collide even for different bytes.
	assert.Equal(t, NewInputIdentity("a.jpg", 10), NewInputIdentity("a.jpg", 10))
}
