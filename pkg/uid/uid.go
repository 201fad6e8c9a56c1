package uid

import (
	"strings"

	"github.com/google/uuid"
)

// New generates a new record identifier.
func New() string {
	return uuid.New().String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Normalize trims and lowercases an identifier taken from a URL or a request
// body. The second return value reports whether the result is a valid UUID.
func Normalize(id string) (string, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if !IsValid(id) {
		return id, false
	}
	return id, true
}
