package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"poetic-camera-be/pkg/vision"
)

const defaultPrompt = "Describe this scene in one short, vivid paragraph. " +
	"Focus on concrete imagery, light, and mood. Do not mention that this is a photo or an image."

// OllamaVisionProvider runs a local multimodal model (e.g. llava) through the
// Ollama chat API. Images travel as base64 strings in the message payload.
type OllamaVisionProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ vision.ImageAnalyzer = &OllamaVisionProvider{}

func NewOllamaVisionProvider(baseURL, modelName string) *OllamaVisionProvider {
	if modelName == "" {
		modelName = "llava"
	}
	return &OllamaVisionProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

type ollamaVisionMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaVisionRequest struct {
	Model    string                `json:"model"`
	Messages []ollamaVisionMessage `json:"messages"`
	Stream   bool                  `json:"stream"`
}

type ollamaVisionResponse struct {
	Message ollamaVisionMessage `json:"message"`
	Done    bool                `json:"done"`
}

func (o *OllamaVisionProvider) Analyze(ctx context.Context, image []byte, mimeType string) (string, error) {
	reqPayload := ollamaVisionRequest{
		Model: o.ModelName,
		Messages: []ollamaVisionMessage{
			{
				Role:    "user",
				Content: defaultPrompt,
				Images:  []string{base64.StdEncoding.EncodeToString(image)},
			},
		},
		Stream: false,
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := o.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama vision request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama vision error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var visionResp ollamaVisionResponse
	if err := json.Unmarshal(bodyBytes, &visionResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return visionResp.Message.Content, nil
}
