package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

// CacheKey derives the retrieval cache key: the SHA-256 hex digest of the
// query, the role and content of each recent turn, and the course id,
// concatenated without separators.
func CacheKey(query string, recent []domain.ChatMessage, courseID string) string {
	var b strings.Builder
	b.WriteString(query)
	for _, m := range recent {
		b.WriteString(m.Role)
		b.WriteString(m.Content)
	}
	b.WriteString(courseID)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// recentTurns returns the last n messages, oldest first.
func recentTurns(history []domain.ChatMessage, n int) []domain.ChatMessage {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	return history
}

// RetrievalCache memoises query rewrites and search results for one session.
// It has no expiry and no size bound. It is not safe for concurrent use.
type RetrievalCache struct {
	rewrites map[string]string
	searches map[string][]domain.RetrievedContext
}

// NewRetrievalCache creates an empty cache.
func NewRetrievalCache() *RetrievalCache {
	return &RetrievalCache{
		rewrites: make(map[string]string),
		searches: make(map[string][]domain.RetrievedContext),
	}
}

// Rewrite returns the cached rewrite for key, or computes and stores it.
// The bool reports a cache hit. Failed computations are not stored.
func (c *RetrievalCache) Rewrite(key string, compute func() (string, error)) (string, bool, error) {
	if v, ok := c.rewrites[key]; ok {
		return v, true, nil
	}
	v, err := compute()
	if err != nil {
		return "", false, err
	}
	c.rewrites[key] = v
	return v, false, nil
}

// Search returns the cached contexts for key, or computes and stores them.
// The bool reports a cache hit. Failed computations are not stored.
func (c *RetrievalCache) Search(key string, compute func() ([]domain.RetrievedContext, error)) ([]domain.RetrievedContext, bool, error) {
	if v, ok := c.searches[key]; ok {
		return v, true, nil
	}
	v, err := compute()
	if err != nil {
		return nil, false, err
	}
	c.searches[key] = v
	return v, false, nil
}

// Len returns the number of cached rewrites and searches.
func (c *RetrievalCache) Len() (rewrites, searches int) {
	return len(c.rewrites), len(c.searches)
}

// Clear empties both maps.
func (c *RetrievalCache) Clear() {
	clear(c.rewrites)
	clear(c.searches)
}
