package pipeline

import (
	"sync"

	"poetic-camera-be/pkg/store"
)

// Stage names the pipeline's position for the current input.
type Stage string

const (
	StageIdle              = Stage("IDLE")
	StageVisionPending     = Stage("VISION_PENDING")
	StageVisionDone        = Stage("VISION_DONE")
	StageRetrievalPending  = Stage("RETRIEVAL_PENDING")
	StageRetrievalDone     = Stage("RETRIEVAL_DONE")
	StageAwaitingGenerate  = Stage("AWAITING_GENERATE_COMMAND")
	StageGenerationPending = Stage("GENERATION_PENDING")
	StageGenerationDone    = Stage("GENERATION_DONE")
	StageAudioPending      = Stage("AUDIO_PENDING")
	StageAudioDone         = Stage("AUDIO_DONE")
	StageFailed            = Stage("FAILED")
)

// Session holds one user's pipeline state. All result fields are absent until
// their stage completes, and only a new input identity or an explicit reset
// clears them — there is no TTL and no partial rollback.
//
// Sessions are owned by exactly one logical caller; the embedded mutex
// serializes pipeline runs when the host serves sessions concurrently.
type Session struct {
	mu sync.Mutex

	ID    string
	Stage Stage

	// FailedStage records which stage latched a fatal failure, empty if none.
	FailedStage Stage

	Narrative          string            // absent == ""
	SelectedCandidates []store.Candidate // absent == nil
	Poem               string            // absent == ""
	Audio              []byte            // absent == nil
	LastInputIdentity  InputIdentity
}

func NewSession(id string) *Session {
	return &Session{ID: id, Stage: StageIdle}
}

// Lock serializes pipeline execution on this session. At most one in-flight
// run per session identity.
func (s *Session) Lock() { s.mu.Lock() }

func (s *Session) Unlock() { s.mu.Unlock() }

// reset clears every cached result. Callers hold the lock.
func (s *Session) reset() {
	s.Stage = StageIdle
	s.FailedStage = ""
	s.Narrative = ""
	s.SelectedCandidates = nil
	s.Poem = ""
	s.Audio = nil
}

// HasNarrative distinguishes a completed vision stage from one that has not
// run; a latched vision failure is neither.
func (s *Session) HasNarrative() bool {
	return s.Narrative != ""
}

func (s *Session) HasReferences() bool {
	return s.SelectedCandidates != nil
}

func (s *Session) HasPoem() bool {
	return s.Poem != ""
}
