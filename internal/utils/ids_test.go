package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAPIKey(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		k := NewAPIKey()
		assert.Len(t, k, 40)
		assert.True(t, IsValidAPIKey(k))
		assert.False(t, seen[k])
		seen[k] = true
	}
}

func TestIsValidAPIKey(t *testing.T) {
	assert.False(t, IsValidAPIKey(""))
	assert.False(t, IsValidAPIKey("xyz"))
	assert.False(t, IsValidAPIKey("ABCDEF0123ABCDEF0123ABCDEF0123ABCDEF0123"))
	assert.True(t, IsValidAPIKey("abcdef0123abcdef0123abcdef0123abcdef0123"))
}
