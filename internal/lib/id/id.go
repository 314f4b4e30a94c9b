package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const tokenSize = 32

// Generate creates a prefixed NanoID, e.g. "ses-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewToken returns a URL-safe secret suitable for a session token.
func NewToken() (string, error) {
	token, err := gonanoid.New(tokenSize)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// NewUUID is used for entity identifiers stored in the database.
func NewUUID() string {
	return uuid.NewString()
}
