package poet

import (
	"context"
	"fmt"
	"log"
	"strings"

	"poetic-camera-be/pkg/llm"
	"poetic-camera-be/pkg/store"
)

// PlaceholderPoem is returned whenever the generation service fails. The
// pipeline always yields displayable text, never an error or empty string.
const PlaceholderPoem = "The camera is blind,\nThe words wont find,\nA path to you."

const (
	maxPoemTokens  = 300
	minTemperature = 0.1
	maxTemperature = 1.0
)

// Generator writes a new poem about a scene, conditioned on a persona's
// style rules and a handful of reference poems used as a style-transfer
// source only.
type Generator struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

func NewGenerator(provider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{provider: provider, logger: logger}
}

// Generate produces a poem for the narrative in the persona's voice.
// Failure of the underlying model degrades to PlaceholderPoem.
func (g *Generator) Generate(ctx context.Context, narrative string, references []store.Candidate, persona Persona, temperature float64) string {
	temperature = clampTemperature(temperature)

	systemPrompt := buildSystemPrompt(persona)
	userPrompt := buildUserPrompt(narrative, references)

	g.logger.Printf("[GEN] Drafting poem as %s with %d references (temp %.2f)", persona.DisplayName, len(references), temperature)

	poem, err := g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	},
		llm.WithTemperature(temperature),
		llm.WithMaxTokens(maxPoemTokens),
	)
	if err != nil || strings.TrimSpace(poem) == "" {
		g.logger.Printf("[WARN] Generation failed, returning placeholder: %v", err)
		return PlaceholderPoem
	}

	return strings.TrimSpace(poem)
}

func buildSystemPrompt(persona Persona) string {
	return fmt.Sprintf(`%s

Your task: observe a scene (described to you) and write a NEW poem about it.

General Rules:
1. Use the style, meter, and vocabulary of the provided Reference Poems.
2. Do NOT copy the references. Use them only as a "style transfer" source.
3. Do not output any intro text. Just the poem.`, persona.StylePrompt)
}

func buildUserPrompt(narrative string, references []store.Candidate) string {
	var refBlock strings.Builder
	for i, ref := range references {
		fmt.Fprintf(&refBlock, "\n--- Reference %d ---\n%s\n", i+1, ref.Text)
	}

	return fmt.Sprintf(`SCENE OBSERVED:
%s

STYLE REFERENCES:
%s

Write the poem now:`, narrative, refBlock.String())
}

func clampTemperature(t float64) float64 {
	if t < minTemperature {
		return minTemperature
	}
	if t > maxTemperature {
		return maxTemperature
	}
	return t
}
