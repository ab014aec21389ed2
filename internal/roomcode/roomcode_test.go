package roomcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	for range 100 {
		code := Generate()
		assert.Len(t, code, Length)
		assert.True(t, Valid(code), "generated code must be valid: %q", code)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "AB12", Normalize("ab12"))
	assert.Equal(t, "AB12", Normalize("  Ab12 "))
	assert.Equal(t, "AB12", Normalize("AB12"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("AB12"))
	assert.True(t, Valid("ZZZZ"))

	assert.False(t, Valid(""))
	assert.False(t, Valid("AB1"))
	assert.False(t, Valid("AB123"))
	assert.False(t, Valid("ab12"), "lowercase is not canonical")
	assert.False(t, Valid("ABO1"), "O is not in the alphabet")
	assert.False(t, Valid("AB-1"))
}

func TestAlphabetHasNoDuplicates(t *testing.T) {
	for i, r := range alphabet {
		assert.Equal(t, i, strings.IndexRune(alphabet, r))
	}
}
