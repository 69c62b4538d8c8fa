package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashOwnerKey returns a path-safe directory name for an owner id such as
// "google:12345", so raw provider ids never appear in object keys.
func HashOwnerKey(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:])
}
