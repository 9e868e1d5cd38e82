package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashKey returns a hex sha256 of the parts joined by newlines.
func HashKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:])
}
