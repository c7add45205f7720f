package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"poetic-camera-be/internal/dto"
	"poetic-camera-be/internal/pkg/serverutils"
	"poetic-camera-be/internal/repository/memory"
	"poetic-camera-be/pkg/events"
	pktNats "poetic-camera-be/pkg/nats"
	"poetic-camera-be/pkg/pipeline"
	"poetic-camera-be/pkg/poet"
	"poetic-camera-be/pkg/store"

	"github.com/google/uuid"
)

type IPipelineService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	Analyze(ctx context.Context, sessionId uuid.UUID, personaKey string, fileName string, image []byte, mimeType string) (*dto.AnalyzeResponse, error)
	Generate(ctx context.Context, sessionId uuid.UUID, req *dto.GeneratePoemRequest) (*dto.GeneratePoemResponse, error)
	GetAudio(ctx context.Context, sessionId uuid.UUID) ([]byte, error)
	GetState(ctx context.Context, sessionId uuid.UUID) (*dto.SessionStateResponse, error)
	Reset(ctx context.Context, sessionId uuid.UUID) error
	ListPersonas() []*dto.PersonaResponse
}

type pipelineService struct {
	sessionRepo    *memory.SessionRepository
	orchestrator   *pipeline.Orchestrator
	registry       *poet.Registry
	eventPublisher *pktNats.Publisher
}

func NewPipelineService(
	sessionRepo *memory.SessionRepository,
	orchestrator *pipeline.Orchestrator,
	registry *poet.Registry,
	eventPublisher *pktNats.Publisher,
) IPipelineService {
	return &pipelineService{
		sessionRepo:    sessionRepo,
		orchestrator:   orchestrator,
		registry:       registry,
		eventPublisher: eventPublisher,
	}
}

func (s *pipelineService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	id := uuid.New()
	session := pipeline.NewSession(id.String())
	s.sessionRepo.Save(session)
	return &dto.CreateSessionResponse{Id: id}, nil
}

func (s *pipelineService) Analyze(ctx context.Context, sessionId uuid.UUID, personaKey string, fileName string, image []byte, mimeType string) (*dto.AnalyzeResponse, error) {
	session, err := s.loadSession(sessionId)
	if err != nil {
		return nil, err
	}

	persona := s.registry.GetOrDefault(personaKey)

	session.Lock()
	defer session.Unlock()

	// The identity is intentionally weak: two different photos with the same
	// base name and byte size are treated as the same input.
	identity := s.orchestrator.OnNewInput(session, filepath.Base(fileName), int64(len(image)))

	narrative, err := s.orchestrator.EnsureNarrative(ctx, session, image, mimeType)
	if err != nil {
		return nil, mapPipelineError(err)
	}

	references, err := s.orchestrator.EnsureReferences(ctx, session, persona.Namespace)
	if err != nil {
		return nil, mapPipelineError(err)
	}

	return &dto.AnalyzeResponse{
		SessionId:  sessionId,
		InputId:    string(identity),
		Narrative:  narrative,
		References: toReferenceDTOs(references),
		Stage:      string(session.Stage),
	}, nil
}

func (s *pipelineService) Generate(ctx context.Context, sessionId uuid.UUID, req *dto.GeneratePoemRequest) (*dto.GeneratePoemResponse, error) {
	session, err := s.loadSession(sessionId)
	if err != nil {
		return nil, err
	}

	persona := s.registry.GetOrDefault(req.Persona)

	session.Lock()
	defer session.Unlock()

	poem, err := s.orchestrator.GeneratePoem(ctx, session, persona, req.Temperature)
	if err != nil {
		return nil, mapPipelineError(err)
	}

	var audio []byte
	if req.WithAudio {
		audio = s.orchestrator.SynthesizeAudio(ctx, session)
	}

	// Notification is auxiliary; a broker outage never fails the request.
	if s.eventPublisher != nil {
		evt := events.NewPoemGeneratedEvent(sessionId.String(), persona.Key, audio != nil)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish POEM_GENERATED event: %v", err)
		}
	}

	return &dto.GeneratePoemResponse{
		SessionId: sessionId,
		Persona:   persona.Key,
		Poem:      poem,
		HasAudio:  audio != nil,
		Stage:     string(session.Stage),
	}, nil
}

func (s *pipelineService) GetAudio(ctx context.Context, sessionId uuid.UUID) ([]byte, error) {
	session, err := s.loadSession(sessionId)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()

	if session.Audio == nil {
		return nil, serverutils.NewAppError(http.StatusNotFound, "no audio has been synthesized for this session")
	}
	return session.Audio, nil
}

func (s *pipelineService) GetState(ctx context.Context, sessionId uuid.UUID) (*dto.SessionStateResponse, error) {
	session, err := s.loadSession(sessionId)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()

	return &dto.SessionStateResponse{
		SessionId:    sessionId,
		Stage:        string(session.Stage),
		InputId:      string(session.LastInputIdentity),
		Narrative:    session.Narrative,
		References:   toReferenceDTOs(session.SelectedCandidates),
		Poem:         session.Poem,
		HasAudio:     session.Audio != nil,
		AudioCapable: s.orchestrator.AudioAvailable(),
	}, nil
}

func (s *pipelineService) Reset(ctx context.Context, sessionId uuid.UUID) error {
	session, err := s.loadSession(sessionId)
	if err != nil {
		return err
	}

	session.Lock()
	defer session.Unlock()

	s.orchestrator.Reset(session)
	return nil
}

func (s *pipelineService) ListPersonas() []*dto.PersonaResponse {
	personas := s.registry.All()
	res := make([]*dto.PersonaResponse, 0, len(personas))
	for _, p := range personas {
		res = append(res, &dto.PersonaResponse{
			Key:         p.Key,
			DisplayName: p.DisplayName,
			Namespace:   p.Namespace,
		})
	}
	return res
}

func (s *pipelineService) loadSession(sessionId uuid.UUID) (*pipeline.Session, error) {
	session, found := s.sessionRepo.Get(sessionId.String())
	if !found {
		return nil, serverutils.NewAppError(http.StatusNotFound, fmt.Sprintf("session %s not found", sessionId))
	}
	return session, nil
}

// mapPipelineError translates stage failures into HTTP-shaped errors: latched
// fatal failures are the client's problem to resolve (new input or reset),
// everything else is a server fault.
func mapPipelineError(err error) error {
	var fatal *pipeline.FatalStageError
	if errors.As(err, &fatal) {
		return serverutils.NewAppError(http.StatusUnprocessableEntity, fatal.Error())
	}
	return err
}

func toReferenceDTOs(candidates []store.Candidate) []dto.ReferenceDTO {
	refs := make([]dto.ReferenceDTO, 0, len(candidates))
	for _, c := range candidates {
		refs = append(refs, dto.ReferenceDTO{
			Id:             c.ID,
			Title:          c.Title,
			Text:           c.Text,
			Score:          c.Score,
			RelevanceScore: c.RelevanceScore,
			Metadata:       c.Metadata,
		})
	}
	return refs
}
