package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// IdempotencyToken returns a stable hex token for the given parts. Parts are joined
// with '|' so ("a|b", "c") and ("a", "b|c") collide; callers pass values without '|'.
func IdempotencyToken(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
