package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskUsername(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"single char", "a", "*"},
		{"two chars", "ab", "**"},
		{"typical", "alice", "al***"},
		{"with underscore", "alice_doe", "al*******"},
		{"unicode", "日本語のユーザー", "日本******"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskUsername(tt.input))
		})
	}
}

func TestMaskItemID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"short", "abc", "***"},
		{"exactly four", "abcd", "****"},
		{"typical", "31243628005209385_29957525166353922", "****3922"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskItemID(tt.input))
		})
	}
}
