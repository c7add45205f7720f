package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsErrorNarrative(t *testing.T) {
	tests := []struct {
		name      string
		narrative string
		want      bool
	}{
		{"clean narrative", "A beach at dusk.", false},
		{"error prefix", "ERROR: model overloaded", true},
		{"embedded provider error", "Error: invalid image payload", true},
		{"empty", "", false},
		{"error word mid-sentence lowercase", "the error was mine", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsErrorNarrative(tt.narrative))
		})
	}
}
