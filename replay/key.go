package replay

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Params carries the call parameters that participate in the cache key,
// such as the model identifier. Keys are canonicalized by JSON-encoding
// the map, which sorts keys lexicographically.
type Params map[string]string

// InputDigest returns the sha256 hex digest of an input payload.
func InputDigest(input []byte) string {
	sum := sha256.Sum256(input)
	return hex.EncodeToString(sum[:])
}

// CacheKey derives the content address for a call. Two calls share a key
// exactly when call type, canonical parameters, and input digest all agree.
func CacheKey(callType string, params Params, inputDigest string) (string, error) {
	canonical, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("canonicalize params: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(callType))
	h.Write([]byte{0})
	h.Write(canonical)
	h.Write([]byte{0})
	h.Write([]byte(inputDigest))
	return hex.EncodeToString(h.Sum(nil)), nil
}
