// internal/qrcode/code_test.go
package qrcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUniqueCode(t *testing.T) {
	code, err := GenerateUniqueCode()
	require.NoError(t, err)

	assert.Len(t, code, CodeLength)
	assert.True(t, IsValidCode(code))
}

func TestGenerateUniqueCodeNoCollisions(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		code, err := GenerateUniqueCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "generated duplicate code %q", code)
		seen[code] = true
	}
}

func TestIsValidCode(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{"generated shape", "ABC1234567", true},
		{"lowercase", "abcdefghij", true},
		{"mixed", "a1B2c3D4e5", true},
		{"too short", "ABC123", false},
		{"too long", "ABC12345678", false},
		{"empty", "", false},
		{"punctuation", "ABC123456!", false},
		{"whitespace", "ABC 123456", false},
		{"unicode", "ABC12345é7", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidCode(tt.code))
		})
	}
}
