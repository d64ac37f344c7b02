package store

import (
	"errors"
	"sync"

	"github.com/soar/padroute/internal/mapping"
)

type cacheKey struct {
	controller string
	gameType   string
}

// Cache fronts a persister with an in-memory copy of every override it has
// seen, so reads never observe a save still queued on the writer.
type Cache struct {
	backing mapping.Persister
	writer  *Writer

	mu      sync.Mutex
	entries map[cacheKey]*mapping.Mapping // nil: known to have no override
}

var _ mapping.Persister = (*Cache)(nil)

// NewCache saves through w when it is set and directly otherwise.
func NewCache(backing mapping.Persister, w *Writer) *Cache {
	return &Cache{backing: backing, writer: w, entries: make(map[cacheKey]*mapping.Mapping)}
}

func (c *Cache) LoadOverride(controller, gameType string) (*mapping.Mapping, error) {
	k := cacheKey{controller, gameType}
	c.mu.Lock()
	m, ok := c.entries[k]
	c.mu.Unlock()
	if ok {
		if m == nil {
			return nil, mapping.ErrNotFound
		}
		return m.Clone(), nil
	}

	m, err := c.backing.LoadOverride(controller, gameType)
	switch {
	case err == nil:
		c.put(k, m.Clone())
		return m, nil
	case errors.Is(err, mapping.ErrNotFound):
		c.put(k, nil)
	}
	return nil, err
}

func (c *Cache) SaveOverride(controller, gameType string, m *mapping.Mapping) error {
	c.put(cacheKey{controller, gameType}, m.Clone())
	return c.backing.SaveOverride(controller, gameType, m)
}

// SaveAsync updates the cache now and the backing store later.
func (c *Cache) SaveAsync(controller, gameType string, m *mapping.Mapping) {
	c.put(cacheKey{controller, gameType}, m.Clone())
	if c.writer == nil {
		_ = c.backing.SaveOverride(controller, gameType, m)
		return
	}
	c.writer.SaveAsync(controller, gameType, m.Clone())
}

// DeleteOverride forgets the override at once. With a writer the delete is
// queued behind any pending save, so none of them can revive the record,
// and its outcome is reported through the writer.
func (c *Cache) DeleteOverride(controller, gameType string, soft bool) error {
	k := cacheKey{controller, gameType}
	if c.writer != nil {
		c.put(k, nil)
		c.writer.DeleteAsync(controller, gameType, soft)
		return nil
	}
	err := c.backing.DeleteOverride(controller, gameType, soft)
	if err == nil || errors.Is(err, mapping.ErrNotFound) {
		c.put(k, nil)
	}
	return err
}

func (c *Cache) put(k cacheKey, m *mapping.Mapping) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[k] = m
}
