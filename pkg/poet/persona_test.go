package poet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "dickinson", all[0].Key)
	assert.Equal(t, "shelley", all[1].Key)
	assert.Equal(t, "whitman", all[2].Key)

	// The first registered persona is the default.
	assert.Equal(t, "dickinson", r.Default().Key)
}

func TestRegistryLookup(t *testing.T) {
	r := NewDefaultRegistry()

	p, ok := r.Get("whitman")
	require.True(t, ok)
	assert.Equal(t, "Walt Whitman", p.DisplayName)
	assert.Equal(t, "whitman", p.Namespace)

	// Display name, case-insensitive.
	p, ok = r.Get("percy bysshe shelley")
	require.True(t, ok)
	assert.Equal(t, "shelley", p.Key)

	p, ok = r.Get("DICKINSON")
	require.True(t, ok)
	assert.Equal(t, "dickinson", p.Key)

	_, ok = r.Get("lord byron")
	assert.False(t, ok)
}

func TestGetOrDefaultUnknownPersona(t *testing.T) {
	r := NewDefaultRegistry()
	p := r.GetOrDefault("not a poet")
	assert.Equal(t, r.Default().Key, p.Key)

	p = r.GetOrDefault("")
	assert.Equal(t, r.Default().Key, p.Key)
}

func TestLoadRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.json")
	content := `[
		{"key": "frost", "display_name": "Robert Frost", "namespace": "frost", "style_prompt": "You are the ghost of Robert Frost."},
		{"key": "plath", "display_name": "Sylvia Plath", "namespace": "plath", "style_prompt": "You are the ghost of Sylvia Plath."}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "frost", r.Default().Key)
	assert.Len(t, r.All(), 2)
}

func TestLoadRegistryEmptyPathUsesDefaults(t *testing.T) {
	r, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Equal(t, "dickinson", r.Default().Key)
}

func TestLoadRegistryRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0644))

	_, err := LoadRegistry(path)
	assert.Error(t, err)
}
