package domain

import (
	"crypto/rand"
	"fmt"
	"time"
)

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// KeyLength is the fixed length of generated license keys.
const KeyLength = 16

// NewLicenseKeyString returns a random fixed-length key drawn from an
// uppercase alphanumeric alphabet. Uniqueness is enforced by the store's
// unique constraint; callers retry on collision.
func NewLicenseKeyString() string {
	return randomString(keyAlphabet, KeyLength)
}

// NewUID returns a 12-character uppercase alphanumeric public identifier.
func NewUID() string {
	return randomString(keyAlphabet, 12)
}

// NewNumericUID returns a 12-digit identifier, the format project users
// carry.
func NewNumericUID() string {
	return randomString("0123456789", 12)
}

// NewResetCode returns a 6-digit password reset code.
func NewResetCode() string {
	return randomString("0123456789", 6)
}

func randomString(alphabet string, n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// fallback: derive from current nanoseconds
		seed := fmt.Sprintf("%d", time.Now().UnixNano())
		for i := range b {
			b[i] = seed[i%len(seed)]
		}
	}
	out := make([]byte, n)
	for i, v := range b {
		out[i] = alphabet[int(v)%len(alphabet)]
	}
	return string(out)
}
