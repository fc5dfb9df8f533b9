package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"

	"github.com/google/uuid"
)

var validAPIKey = regexp.MustCompile(`^[0-9a-f]{40}$`)

// NewAPIKey returns a new random 40 character hex API key.
func NewAPIKey() string {
	a, b := uuid.New(), uuid.New()
	sum := sha1.Sum(append(a[:], b[:]...))
	return hex.EncodeToString(sum[:])
}

// IsValidAPIKey returns true if the string looks like a key from NewAPIKey.
func IsValidAPIKey(in string) bool {
	return validAPIKey.MatchString(in)
}
