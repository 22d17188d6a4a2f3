// Package util holds the digest helpers shared by session token hashing and
// payment gateway signatures.
package util

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// SHA256Hex returns the lowercase hex SHA-256 of the concatenated parts.
// Wompi checksums and integrity signatures are defined over plain concatenation.
func SHA256Hex(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// EqualHexFold compares two hex digests ignoring case, in constant time.
// An empty digest never matches.
func EqualHexFold(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(strings.ToLower(a)), []byte(strings.ToLower(b))) == 1
}
