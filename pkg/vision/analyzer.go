package vision

import (
	"context"
	"strings"
)

// ErrorPrefix marks a narrative that carries a failure instead of a scene
// description. The analyzer boundary has no structured error channel, so a
// provider may return a successfully-transported string that still signals
// failure this way.
const ErrorPrefix = "ERROR:"

// ImageAnalyzer reduces an image to a short natural-language narrative.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (string, error)
}

// IsErrorNarrative reports whether a narrative string is a failure signal.
func IsErrorNarrative(narrative string) bool {
	return strings.HasPrefix(narrative, ErrorPrefix) || strings.Contains(narrative, "Error:")
}
