package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"poetic-camera-be/pkg/tts"
)

// ElevenLabsProvider narrates text through the ElevenLabs text-to-speech API
// and returns MPEG audio bytes.
type ElevenLabsProvider struct {
	apiKey  string
	baseURL string
	voiceID string
	client  *http.Client
}

var _ tts.AudioSynthesizer = &ElevenLabsProvider{}

func NewElevenLabsProvider(apiKey, baseURL, voiceID string) *ElevenLabsProvider {
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io/v1"
	}
	if voiceID == "" {
		voiceID = "21m00Tcm4TlvDq8ikWAM" // default narration voice
	}
	return &ElevenLabsProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		voiceID: voiceID,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	reqBody := synthesizeRequest{
		Text:    text,
		ModelID: "eleven_monolingual_v1",
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", p.baseURL, p.voiceID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	return bodyBytes, nil
}
