package factory

import (
	"fmt"

	"poetic-camera-be/pkg/vision"
	"poetic-camera-be/pkg/vision/groq"
	"poetic-camera-be/pkg/vision/ollama"
)

func NewImageAnalyzer(providerType, modelName, baseURL, apiKey string) (vision.ImageAnalyzer, error) {
	switch providerType {
	case "groq":
		if apiKey == "" {
			return nil, fmt.Errorf("groq vision provider requires an API key")
		}
		return groq.NewGroqVisionProvider(apiKey, baseURL, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaVisionProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported vision provider: %s", providerType)
	}
}
