// internal/qrcode/code.go
package qrcode

import (
	"crypto/rand"
	"math/big"
)

// CodeLength is the fixed length of a product's public unique code.
const CodeLength = 10

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueCode returns a random URL-safe alphanumeric code.
// Uniqueness against the persisted set is the caller's job; the
// products.unique_code index is the final arbiter and the caller
// retries on conflict.
func GenerateUniqueCode() (string, error) {
	b := make([]byte, CodeLength)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// IsValidCode reports whether s has the shape of a generated code.
func IsValidCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
