package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"plain", "hello farm", 0, "hello farm"},
		{"trims", "  gm  ", 0, "gm"},
		{"drops control characters", "gm\x00\x07 fren", 0, "gm fren"},
		{"composes to NFC", "cafe\u0301", 0, "caf\u00e9"},
		{"truncates by runes", "ééééé", 3, "ééé"},
		{"no limit", "abcdef", 0, "abcdef"},
		{"only whitespace", " \t\n ", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.input, tt.maxRunes))
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5, 0, 10))
	assert.Equal(t, 10.0, Clamp(50, 0, 10))
	assert.Equal(t, 4.5, Clamp(4.5, 0, 10))
	assert.Equal(t, 0.0, Clamp(math.NaN(), 0, 10))
}
