package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// hashKey builds "prefix:sha256(json(parts))".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// keyType is the leading segment of a key after any scope prefix, used to
// label cache hooks ("catalog", "layout", "artifact", "http").
func keyType(key string) string {
	for _, kind := range []string{"catalog:", "layout:", "artifact:", "http:"} {
		if strings.Contains(key, kind) {
			return strings.TrimSuffix(kind, ":")
		}
	}
	return "other"
}
