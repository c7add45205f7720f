package poet

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Persona is one poet's style configuration: the instruction template that
// conditions generation, the UI-facing name, and the corpus namespace that
// scopes retrieval.
type Persona struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Namespace   string `json:"namespace"`
	StylePrompt string `json:"style_prompt"`
}

// Registry is the process-wide persona table. Read-only after construction;
// the first entry is the default persona.
type Registry struct {
	order    []string
	personas map[string]Persona
}

func NewRegistry(personas []Persona) *Registry {
	r := &Registry{personas: make(map[string]Persona, len(personas))}
	for _, p := range personas {
		key := strings.ToLower(p.Key)
		if _, exists := r.personas[key]; !exists {
			r.order = append(r.order, key)
		}
		r.personas[key] = p
	}
	return r
}

// NewDefaultRegistry returns the three built-in poets.
func NewDefaultRegistry() *Registry {
	return NewRegistry(defaultPersonas())
}

// LoadRegistry reads a persona table from a JSON file so poets can be added
// without a code change. An empty path yields the built-ins.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return NewDefaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}
	var personas []Persona
	if err := json.Unmarshal(data, &personas); err != nil {
		return nil, fmt.Errorf("parse persona file: %w", err)
	}
	if len(personas) == 0 {
		return nil, fmt.Errorf("persona file %s defines no personas", path)
	}
	return NewRegistry(personas), nil
}

// Get resolves a persona by key or display name, case-insensitively.
func (r *Registry) Get(name string) (Persona, bool) {
	if p, ok := r.personas[strings.ToLower(name)]; ok {
		return p, true
	}
	for _, p := range r.personas {
		if strings.EqualFold(p.DisplayName, name) {
			return p, true
		}
	}
	return Persona{}, false
}

// GetOrDefault never fails on an unknown name; it falls back to the default
// persona instead.
func (r *Registry) GetOrDefault(name string) Persona {
	if p, ok := r.Get(name); ok {
		return p
	}
	return r.Default()
}

// Default returns the first registered persona.
func (r *Registry) Default() Persona {
	return r.personas[r.order[0]]
}

// All returns personas in registration order.
func (r *Registry) All() []Persona {
	out := make([]Persona, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.personas[key])
	}
	return out
}

func defaultPersonas() []Persona {
	return []Persona{
		{
			Key:         "dickinson",
			DisplayName: "Emily Dickinson",
			Namespace:   "dickinson",
			StylePrompt: `You are the ghost of Emily Dickinson.
Style: Compressed, enigmatic, and metaphysical.
Rules:
1. Use capitalizations for Emphasis (e.g., "The Soul").
2. Use the Em-Dash frequently for pauses.
3. Keep it short (4-10 lines).
4. Focus on the soul, death, nature, and the self.`,
		},
		{
			Key:         "shelley",
			DisplayName: "Percy Bysshe Shelley",
			Namespace:   "shelley",
			StylePrompt: `You are the ghost of Percy Bysshe Shelley.
Style: Romantic, revolutionary, and sublime.
Rules:
1. Use rich, flowery imagery and complex emotional landscapes.
2. Focus on the power of nature (wind, mountains, sky) and the spirit of freedom.
3. Do NOT use Dickinson's dashes. Use standard, elegant punctuation.
4. Keep it short (4-8 lines).`,
		},
		{
			Key:         "whitman",
			DisplayName: "Walt Whitman",
			Namespace:   "whitman",
			StylePrompt: `You are the ghost of Walt Whitman.
Style: Free verse, expansive, and democratic.
Rules:
1. Use long, sprawling lines.
2. Use "cataloging" (listing things).
3. Celebrate the self, the body, and the connection between all things.
4. Tone: Robust, declarative, and optimistic.`,
		},
	}
}
