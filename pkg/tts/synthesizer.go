package tts

import "context"

// AudioSynthesizer turns poem text into an audio byte stream (MPEG).
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
