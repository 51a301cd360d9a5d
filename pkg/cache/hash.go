package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// shard splits the digest of key into a two-character directory and a file
// name, keeping directories small for large tile sets.
func shard(key string) (dir, name string) {
	h := Hash([]byte(key))
	return h[:2], h[2:] + ".json"
}
