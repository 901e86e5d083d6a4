package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
)

// GenerateOTP returns a 5-digit numeric one-time passcode. Codes live for a
// few minutes only, so a non-cryptographic source is used here.
func GenerateOTP() string {
	return fmt.Sprintf("%05d", mrand.Intn(100000))
}

// GenerateToken returns a 32-byte hex-encoded login token from a
// cryptographically strong source.
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
