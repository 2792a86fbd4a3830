// Package onetime generates the single-use secrets mailed to users for
// password reset and email verification. Only the sha256 of a token is ever
// stored; the plaintext exists in the reset/verify link and nowhere else.
package onetime

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const tokenBytes = 32

func New() (string, error) {
	const op = "onetime.New"

	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken is the at-rest form of a token. A single sha256 round is enough
// here: unlike passwords, these are 256-bit random values.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
