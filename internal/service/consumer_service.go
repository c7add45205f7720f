package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"poetic-camera-be/internal/dto"
	"poetic-camera-be/internal/entity"
	"poetic-camera-be/internal/repository/unitofwork"
	"poetic-camera-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedPoemMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Indexing poem %s into namespace %q", payload.PoemId, payload.Namespace)

	semantic := BuildSemanticString(payload.Title, payload.Text, payload.Metadata)

	res, err := cs.embeddingProvider.Generate(semantic, "RETRIEVAL_DOCUMENT")
	if err != nil {
		log.Printf("[ERROR] Failed to generate embedding for poem %s: %v", payload.PoemId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	poemEmbedding := &entity.PoemEmbedding{
		Id:             payload.PoemId,
		Title:          payload.Title,
		Document:       payload.Text,
		SemanticString: semantic,
		Namespace:      payload.Namespace,
		Metadata:       payload.Metadata,
		EmbeddingValue: res.Embedding.Values,
		CreatedAt:      time.Now(),
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	// Re-queued messages overwrite any half-indexed row for the same id.
	if err := uow.PoemEmbeddingRepository().Delete(ctx, payload.PoemId); err != nil {
		log.Printf("[ERROR] Failed to delete stale embedding for poem %s: %v", payload.PoemId, err)
		msg.Nack()
		return
	}

	if err := uow.PoemEmbeddingRepository().Create(ctx, poemEmbedding); err != nil {
		log.Printf("[ERROR] Failed to store embedding for poem %s: %v", payload.PoemId, err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Poem indexed: %s (namespace %q)", payload.PoemId, payload.Namespace)
	msg.Ack()
}
