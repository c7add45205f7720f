package pipeline

import (
	"context"
	"fmt"
	"log"

	"poetic-camera-be/pkg/poet"
	"poetic-camera-be/pkg/rerank"
	"poetic-camera-be/pkg/store"
	"poetic-camera-be/pkg/tts"
	"poetic-camera-be/pkg/vision"
)

const (
	// RetrievalTopK deliberately oversamples the final selection 5x so the
	// reranker has a wide enough pool to surface non-obvious matches.
	RetrievalTopK = 15
	SelectionTopK = 3
)

// Retriever maps a text query and corpus namespace to scored candidates in
// the vector store's similarity order.
type Retriever interface {
	Search(ctx context.Context, query, namespace string, topK int) ([]store.Candidate, error)
}

// FatalStageError halts the pipeline for the current input. Only a new input
// or an explicit reset clears it.
type FatalStageError struct {
	Stage  Stage
	Reason string
}

func (e *FatalStageError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %s", e.Stage, e.Reason)
}

// Orchestrator drives the five-stage pipeline over a Session, memoizing each
// stage's output per input identity and applying the degradation policy:
// vision failures are fatal, rerank and generation failures degrade to
// substitutes, audio failures yield no artifact but keep the poem.
type Orchestrator struct {
	analyzer    vision.ImageAnalyzer
	retriever   Retriever
	selector    *rerank.Selector
	generator   *poet.Generator
	synthesizer tts.AudioSynthesizer // nil when the audio capability is absent
	logger      *log.Logger
}

func NewOrchestrator(
	analyzer vision.ImageAnalyzer,
	retriever Retriever,
	selector *rerank.Selector,
	generator *poet.Generator,
	synthesizer tts.AudioSynthesizer,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		analyzer:    analyzer,
		retriever:   retriever,
		selector:    selector,
		generator:   generator,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// OnNewInput computes the input identity and, when it differs from the
// session's last one, wipes every cached result before storing the new
// identity. This reset is the sole invalidation path for cached stages.
// Callers hold the session lock.
func (o *Orchestrator) OnNewInput(session *Session, name string, size int64) InputIdentity {
	identity := NewInputIdentity(name, size)
	if session.LastInputIdentity != identity {
		o.logger.Printf("[PIPELINE] New input %q supersedes %q, resetting session %s", identity, session.LastInputIdentity, session.ID)
		session.reset()
		session.LastInputIdentity = identity
	}
	return identity
}

// EnsureNarrative runs vision analysis at most once per input identity.
// A transport failure and an error-prefixed narrative are the same fatal
// signal: the session latches Failed(vision) and no downstream stage runs
// until a new input or reset. Callers hold the session lock.
func (o *Orchestrator) EnsureNarrative(ctx context.Context, session *Session, image []byte, mimeType string) (string, error) {
	if session.FailedStage == StageVisionPending {
		return "", &FatalStageError{Stage: StageVisionPending, Reason: "vision analysis already failed for this input"}
	}
	if session.HasNarrative() {
		return session.Narrative, nil
	}

	session.Stage = StageVisionPending
	narrative, err := o.analyzer.Analyze(ctx, image, mimeType)
	if err != nil || vision.IsErrorNarrative(narrative) {
		reason := narrative
		if err != nil {
			reason = err.Error()
		}
		session.Stage = StageFailed
		session.FailedStage = StageVisionPending
		o.logger.Printf("[ERROR] Vision analysis failed for session %s: %s", session.ID, reason)
		return "", &FatalStageError{Stage: StageVisionPending, Reason: reason}
	}

	session.Narrative = narrative
	session.Stage = StageVisionDone
	return narrative, nil
}

// EnsureReferences retrieves and reranks the reference poems at most once per
// input identity. Retrieval errors propagate; rerank failures degrade inside
// the selector and never surface here. Callers hold the session lock.
func (o *Orchestrator) EnsureReferences(ctx context.Context, session *Session, namespace string) ([]store.Candidate, error) {
	if session.FailedStage != "" {
		return nil, &FatalStageError{Stage: session.FailedStage, Reason: "a previous stage failed for this input"}
	}
	if !session.HasNarrative() {
		return nil, fmt.Errorf("narrative is not available yet")
	}
	if session.HasReferences() {
		return session.SelectedCandidates, nil
	}

	session.Stage = StageRetrievalPending
	raw, err := o.retriever.Search(ctx, session.Narrative, namespace, RetrievalTopK)
	if err != nil {
		session.Stage = StageFailed
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	o.logger.Printf("[PIPELINE] Retrieved %d candidates from namespace %q, reranking to top %d", len(raw), namespace, SelectionTopK)
	selected := o.selector.Select(ctx, session.Narrative, raw, SelectionTopK)

	session.SelectedCandidates = selected
	session.Stage = StageAwaitingGenerate
	return selected, nil
}

// GeneratePoem runs the generation stage. It never runs automatically: the
// caller invokes it on an explicit user action. A fresh poem overwrites the
// previous one and invalidates any audio, since the source text changed.
// Callers hold the session lock.
func (o *Orchestrator) GeneratePoem(ctx context.Context, session *Session, persona poet.Persona, temperature float64) (string, error) {
	if session.FailedStage != "" {
		return "", &FatalStageError{Stage: session.FailedStage, Reason: "a previous stage failed for this input"}
	}
	if !session.HasReferences() {
		return "", fmt.Errorf("references are not available yet")
	}

	session.Stage = StageGenerationPending
	poem := o.generator.Generate(ctx, session.Narrative, session.SelectedCandidates, persona, temperature)

	session.Poem = poem
	session.Audio = nil
	session.Stage = StageGenerationDone
	return poem, nil
}

// SynthesizeAudio narrates the current poem when the audio capability is
// configured. Failure here never invalidates the poem: the session keeps
// GenerationDone and the audio artifact is simply absent.
// Callers hold the session lock.
func (o *Orchestrator) SynthesizeAudio(ctx context.Context, session *Session) []byte {
	if o.synthesizer == nil || !session.HasPoem() {
		return nil
	}

	session.Stage = StageAudioPending
	audio, err := o.synthesizer.Synthesize(ctx, session.Poem)
	if err != nil {
		o.logger.Printf("[WARN] Audio synthesis failed for session %s, poem remains valid: %v", session.ID, err)
		session.Stage = StageGenerationDone
		return nil
	}

	session.Audio = audio
	session.Stage = StageAudioDone
	return audio
}

// Reset clears all cached state including a latched failure. Explicit user
// action. Callers hold the session lock.
func (o *Orchestrator) Reset(session *Session) {
	session.reset()
	session.LastInputIdentity = ""
}

// AudioAvailable reports whether the audio capability is configured.
func (o *Orchestrator) AudioAvailable() bool {
	return o.synthesizer != nil
}
