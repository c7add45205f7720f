package factory

import (
	"fmt"

	"poetic-camera-be/pkg/llm"
	"poetic-camera-be/pkg/rerank"
	"poetic-camera-be/pkg/rerank/cohere"
	"poetic-camera-be/pkg/rerank/llmjudge"
)

func NewBackend(backendType, apiKey, model string, llmProvider llm.LLMProvider) (rerank.Backend, error) {
	switch backendType {
	case "cohere":
		if apiKey == "" {
			return nil, fmt.Errorf("cohere rerank backend requires an API key")
		}
		return cohere.NewClient(apiKey, "", model), nil
	case "llm":
		if llmProvider == nil {
			return nil, fmt.Errorf("llm rerank backend requires an LLM provider")
		}
		return llmjudge.NewBackend(llmProvider), nil
	default:
		return nil, fmt.Errorf("unsupported rerank backend: %s", backendType)
	}
}
