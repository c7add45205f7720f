package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"poetic-camera-be/internal/dto"
	"poetic-camera-be/internal/pkg/serverutils"
	"poetic-camera-be/internal/repository/specification"
	"poetic-camera-be/internal/repository/unitofwork"
	"poetic-camera-be/pkg/pipeline"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICorpusService interface {
	Add(ctx context.Context, req *dto.AddPoemRequest) (*dto.AddPoemResponse, error)
	Search(ctx context.Context, query string, namespace string, topK int) (*dto.CorpusSearchResponse, error)
	List(ctx context.Context, namespace string, limit int) (*dto.CorpusListResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.CorpusPoemResponse, error)
}

type corpusService struct {
	publisherService IPublisherService
	retriever        pipeline.Retriever
	uowFactory       unitofwork.RepositoryFactory
}

func NewCorpusService(publisherService IPublisherService, retriever pipeline.Retriever, uowFactory unitofwork.RepositoryFactory) ICorpusService {
	return &corpusService{
		publisherService: publisherService,
		retriever:        retriever,
		uowFactory:       uowFactory,
	}
}

// Add queues a poem for embedding. Indexing is asynchronous so a slow
// embedding provider never blocks the ingest endpoint.
func (c *corpusService) Add(ctx context.Context, req *dto.AddPoemRequest) (*dto.AddPoemResponse, error) {
	msgPayload := dto.EmbedPoemMessage{
		PoemId:    uuid.New(),
		Namespace: req.Namespace,
		Title:     req.Title,
		Text:      req.Text,
		Metadata:  req.Metadata,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}

	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return &dto.AddPoemResponse{
		Id:     msgPayload.PoemId,
		Status: "queued",
	}, nil
}

func (c *corpusService) Search(ctx context.Context, query string, namespace string, topK int) (*dto.CorpusSearchResponse, error) {
	if topK <= 0 {
		topK = pipeline.RetrievalTopK
	}

	candidates, err := c.retriever.Search(ctx, query, namespace, topK)
	if err != nil {
		return nil, err
	}

	return &dto.CorpusSearchResponse{
		Query:     query,
		Namespace: namespace,
		Results:   toReferenceDTOs(candidates),
	}, nil
}

func (c *corpusService) List(ctx context.Context, namespace string, limit int) (*dto.CorpusListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	repo := uow.PoemEmbeddingRepository()

	total, err := repo.Count(ctx, specification.ByNamespace{Namespace: namespace})
	if err != nil {
		return nil, err
	}

	rows, err := repo.FindAll(ctx,
		specification.ByNamespace{Namespace: namespace},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{N: limit},
	)
	if err != nil {
		return nil, err
	}

	poems := make([]dto.CorpusPoemResponse, 0, len(rows))
	for _, row := range rows {
		poems = append(poems, dto.CorpusPoemResponse{
			Id:        row.Id,
			Title:     row.Title,
			Text:      row.Document,
			Namespace: row.Namespace,
			Metadata:  row.Metadata,
		})
	}

	return &dto.CorpusListResponse{
		Namespace: namespace,
		Total:     total,
		Poems:     poems,
	}, nil
}

func (c *corpusService) Show(ctx context.Context, id uuid.UUID) (*dto.CorpusPoemResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	row, err := uow.PoemEmbeddingRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, serverutils.NewAppError(fiber.StatusNotFound, "poem not found")
	}

	return &dto.CorpusPoemResponse{
		Id:        row.Id,
		Title:     row.Title,
		Text:      row.Document,
		Namespace: row.Namespace,
		Metadata:  row.Metadata,
	}, nil
}

// BuildSemanticString derives the text that gets embedded for a poem. Metadata
// descriptors index better than raw verse, so they win when present.
func BuildSemanticString(title, text string, metadata map[string]interface{}) string {
	themes := joinStringList(metadata["themes"])
	mood, _ := metadata["mood"].(string)
	nouns := joinStringList(metadata["concrete_nouns"])

	if themes != "" || mood != "" || nouns != "" {
		parts := []string{}
		if mood != "" {
			parts = append(parts, fmt.Sprintf("A %s poem", mood))
		} else {
			parts = append(parts, "A poem")
		}
		if themes != "" {
			parts = append(parts, fmt.Sprintf("about %s", themes))
		}
		if nouns != "" {
			parts = append(parts, fmt.Sprintf("featuring imagery of %s", nouns))
		}
		return strings.Join(parts, " ") + "."
	}

	// No descriptors: fall back to the title and opening lines.
	words := strings.Fields(text)
	if len(words) > 40 {
		words = words[:40]
	}
	return strings.TrimSpace(title + ". " + strings.Join(words, " "))
}

func joinStringList(v interface{}) string {
	switch list := v.(type) {
	case []string:
		return strings.Join(list, ", ")
	case []interface{}:
		items := make([]string, 0, len(list))
		for _, it := range list {
			if s, ok := it.(string); ok {
				items = append(items, s)
			}
		}
		return strings.Join(items, ", ")
	}
	return ""
}
