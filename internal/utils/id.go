package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// Resource identifiers are opaque 24-character lowercase hex strings
// (12 random bytes). The shape is checked before any database lookup so
// malformed ids are rejected with a 400 instead of producing an empty
// 404 query.

// NewID returns a fresh 24-character hex identifier.
func NewID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; there is
		// no sane fallback for id generation.
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// IsHexID reports whether s has the exact shape of a resource id.
func IsHexID(s string) bool {
	if len(s) != 24 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
