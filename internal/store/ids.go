package store

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a new record identifier. UUIDv7 values sort by creation time,
// which gives every backend a stable native ordering for listing.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}
