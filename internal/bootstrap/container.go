package bootstrap

import (
	"log"
	"os"
	"path/filepath"

	"poetic-camera-be/internal/config"
	"poetic-camera-be/internal/controller"
	"poetic-camera-be/internal/pkg/logger"
	"poetic-camera-be/internal/repository/memory"
	"poetic-camera-be/internal/repository/unitofwork"
	"poetic-camera-be/internal/service"
	"poetic-camera-be/pkg/embedding"
	"poetic-camera-be/pkg/embedding/jina"
	llmFactory "poetic-camera-be/pkg/llm/factory"
	pktNats "poetic-camera-be/pkg/nats"
	"poetic-camera-be/pkg/pipeline"
	"poetic-camera-be/pkg/poet"
	"poetic-camera-be/pkg/rerank"
	rerankFactory "poetic-camera-be/pkg/rerank/factory"
	"poetic-camera-be/pkg/tts"
	"poetic-camera-be/pkg/tts/elevenlabs"
	visionFactory "poetic-camera-be/pkg/vision/factory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PipelineController controller.IPipelineController
	CorpusController   controller.ICorpusController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLogger := initPipelineLogger()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	// Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.Gemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// Vision Provider
	analyzer, err := visionFactory.NewImageAnalyzer(
		cfg.Ai.VisionProvider,
		cfg.Ai.VisionModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.Groq,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Vision Provider: %v", err)
	}
	log.Printf("[INFO] Using Vision Provider: %s (%s)", cfg.Ai.VisionProvider, cfg.Ai.VisionModel)

	// LLM Provider for generation and the LLM-judge rerank backend
	llmProvider, err := llmFactory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.Groq,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Rerank Backend
	rerankBackend, err := rerankFactory.NewBackend(
		cfg.Ai.RerankBackend,
		cfg.Keys.Cohere,
		cfg.Ai.RerankModel,
		llmProvider,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Rerank Backend: %v", err)
	}
	selector := rerank.NewSelector(rerankBackend, pipelineLogger)

	generator := poet.NewGenerator(llmProvider, pipelineLogger)

	// Audio is an optional capability: present only when a key is configured.
	var synthesizer tts.AudioSynthesizer
	if cfg.Keys.ElevenLabs != "" {
		synthesizer = elevenlabs.NewElevenLabsProvider(cfg.Keys.ElevenLabs, "", cfg.Ai.TTSVoiceID)
		log.Printf("[INFO] Audio synthesis enabled (ElevenLabs)")
	} else {
		log.Printf("[INFO] Audio synthesis disabled: no ELEVENLABS_API_KEY")
	}

	// Persona Registry
	registry := poet.NewDefaultRegistry()
	if cfg.App.PersonaFilePath != "" {
		loaded, err := poet.LoadRegistry(cfg.App.PersonaFilePath)
		if err != nil {
			log.Printf("[WARN] Failed to load persona file %s, using defaults: %v", cfg.App.PersonaFilePath, err)
		} else {
			registry = loaded
		}
	}

	// In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 4. Pipeline Wiring
	retriever := service.NewVectorRetriever(uowFactory, embeddingProvider, cfg.Ai.RetrievalThreshold)
	orchestrator := pipeline.NewOrchestrator(
		analyzer,
		retriever,
		selector,
		generator,
		synthesizer,
		pipelineLogger,
	)

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.EmbedPoemTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.EmbedPoemTopic,
		uowFactory,
		embeddingProvider,
	)

	pipelineService := service.NewPipelineService(sessionRepo, orchestrator, registry, natsPub)
	corpusService := service.NewCorpusService(publisherService, retriever, uowFactory)

	sysLogger.Info("bootstrap", "Container wired", map[string]interface{}{
		"vision": cfg.Ai.VisionProvider,
		"llm":    cfg.Ai.LLMProvider,
		"rerank": cfg.Ai.RerankBackend,
		"audio":  synthesizer != nil,
	})

	// 6. Controllers
	return &Container{
		PipelineController: controller.NewPipelineController(pipelineService),
		CorpusController:   controller.NewCorpusController(corpusService),

		ConsumerService: consumerService,
	}
}

func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[PIPELINE] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
