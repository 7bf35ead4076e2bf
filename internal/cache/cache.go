// Package cache stores fetched source documents so that repeated runs over
// the same URL do not hit the network. Concordances themselves are never
// cached; they are rebuilt from the document text every run.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte store with per-entry expiry
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key for a source path or URL
func CacheKey(source string) string {
	hash := sha256.Sum256([]byte(source))
	return "concordance-v1-" + hex.EncodeToString(hash[:])
}

// Document is a fetched source as stored in the cache
type Document struct {
	Source      string    `json:"source"`
	FinalURL    string    `json:"final_url,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Body        []byte    `json:"body"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// GetDocument looks up the cached document for source
func GetDocument(c Cache, source string) (*Document, bool) {
	data, ok := c.Get(CacheKey(source))
	if !ok {
		return nil, false
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		_ = c.Delete(CacheKey(source))
		return nil, false
	}
	return &doc, true
}

// PutDocument stores doc under its source key
func PutDocument(c Cache, doc *Document, ttl time.Duration) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return c.Set(CacheKey(doc.Source), data, ttl)
}
