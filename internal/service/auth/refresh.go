package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// 32 bytes = 256 bits of entropy; uniqueness rests on the entropy alone,
// the store never checks for duplicates
const refreshTokenBytesLen = 32

// NewRefreshToken returns an opaque random refresh token.
// Pure bearer secret: no structure, no claims inside.
func NewRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("error while generating refresh token. Err: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}
