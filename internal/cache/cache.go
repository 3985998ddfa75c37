// Package cache provides a single-entry conversation cache.
//
// The cache owns at most one entry with an explicit lifecycle: Load fetches
// on demand and replaces the held entry only when the key differs. This
// replaces the implicit module-level "currently loaded" global found in
// ad-hoc callers with an explicit object.
package cache

import (
	"sync"

	"chatexport/internal/model"
)

// LoaderFunc fetches a conversation by key when the cache misses.
type LoaderFunc func(key string) (*model.Conversation, error)

// ConversationCache holds one optional conversation keyed by ID.
type ConversationCache struct {
	mu   sync.Mutex
	key  string
	conv *model.Conversation
}

// New creates an empty cache.
func New() *ConversationCache {
	return &ConversationCache{}
}

// Load returns the held conversation when the key matches; otherwise it
// invokes loader and replaces the held entry. A loader error leaves the
// previously held entry untouched.
func (c *ConversationCache) Load(key string, loader LoaderFunc) (*model.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conv != nil && c.key == key {
		return c.conv, nil
	}

	conv, err := loader(key)
	if err != nil {
		return nil, err
	}

	c.key = key
	c.conv = conv
	return conv, nil
}

// Invalidate drops the held entry if it matches key.
func (c *ConversationCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key == key {
		c.key = ""
		c.conv = nil
	}
}

// Clear drops the held entry unconditionally.
func (c *ConversationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.key = ""
	c.conv = nil
}
