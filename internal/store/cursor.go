package store

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// EncodeCursor turns a backend resume key into an opaque, URL-safe token.
func EncodeCursor(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	return base58.Encode(key)
}

// DecodeCursor reverses EncodeCursor. An empty token decodes to a nil key.
func DecodeCursor(token string) ([]byte, error) {
	if token == "" {
		return nil, nil
	}

	key, err := base58.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	return key, nil
}
