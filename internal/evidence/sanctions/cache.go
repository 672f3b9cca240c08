package sanctions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

const cacheKeyPrefix = "kyc:sanctions:"

// Cache stores ranked screening matches. Implementations return ErrCacheMiss
// when no fresh entry exists.
type Cache interface {
	Get(ctx context.Context, key string) ([]Match, error)
	Set(ctx context.Context, key string, matches []Match) error
}

// CacheKey derives the cache key for a normalized query. Names are hashed so
// no personal data ends up in cache keys.
func CacheKey(q Query, topK int) string {
	raw := strings.ToLower(q.Name) + "\x00" + q.BirthDate + "\x00" + strconv.Itoa(topK)
	sum := sha256.Sum256([]byte(raw))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
