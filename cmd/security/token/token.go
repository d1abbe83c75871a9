package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// DefaultBytes is the default token entropy (256 bits).
const DefaultBytes = 32

// NewHex returns a cryptographically random token encoded as lowercase hex.
// The encoded length is fixed at 2*nBytes characters.
func NewHex(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = DefaultBytes
	}

	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Equal compares two tokens in constant time.
// Unequal lengths are reported immediately; length is not secret here.
func Equal(a, b string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
