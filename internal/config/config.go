package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	EmbedPoemTopic     string
	PersonaFilePath    string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	Groq       string
	Cohere     string
	Gemini     string
	Jina       string
	ElevenLabs string
}

type AIConfig struct {
	VisionProvider     string // "groq" or "ollama"
	VisionModel        string
	LLMProvider        string // "groq" or "ollama"
	LLMModel           string
	EmbeddingProvider  string // "gemini" or "jina"
	RerankBackend      string // "cohere" or "llm"
	RerankModel        string
	OllamaBaseURL      string
	TTSVoiceID         string
	RetrievalThreshold float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			EmbedPoemTopic:     getEnv("EMBED_POEM_TOPIC_NAME", "EMBED_POEM"),
			PersonaFilePath:    getEnv("PERSONA_FILE_PATH", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Groq:       getEnv("GROQ_API_KEY", ""),
			Cohere:     getEnv("COHERE_API_KEY", ""),
			Gemini:     getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:       getEnv("JINA_API_KEY", ""),
			ElevenLabs: getEnv("ELEVENLABS_API_KEY", ""),
		},
		Ai: AIConfig{
			VisionProvider:     getEnv("VISION_PROVIDER", "groq"),
			VisionModel:        getEnv("VISION_MODEL", "llama-3.2-11b-vision-preview"),
			LLMProvider:        getEnv("LLM_PROVIDER", "groq"),
			LLMModel:           getEnv("GENERATOR_MODEL_ID", "llama-3.3-70b-versatile"),
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "gemini"),
			RerankBackend:      getEnv("RERANK_BACKEND", "cohere"),
			RerankModel:        getEnv("RERANK_MODEL", "rerank-english-v3.0"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			TTSVoiceID:         getEnv("ELEVENLABS_VOICE_ID", ""),
			RetrievalThreshold: getEnvAsFloat("RETRIEVAL_THRESHOLD", 0.0),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
