package normalisers

import (
	"sync"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// Context owns the lookups shared by one normalisation pass.
// It is created once per process and passed to the Normaliser.
type Context struct {
	mu         sync.RWMutex
	catalog    map[string]domain.Action
	unresolved int
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{catalog: make(map[string]domain.Action)}
}

// loadCatalog replaces the action lookup with actions.
func (c *Context) loadCatalog(actions []domain.Action) {
	catalog := make(map[string]domain.Action, len(actions))
	for _, a := range actions {
		catalog[a.ID] = a
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = catalog
	c.unresolved = 0
}

// Lookup resolves a catalog action by id.
func (c *Context) Lookup(id string) (domain.Action, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.catalog[id]
	return a, ok
}

func (c *Context) markUnresolved() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unresolved++
}

// Unresolved returns how many references the last pass could not resolve.
func (c *Context) Unresolved() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unresolved
}

// CatalogSize returns the number of catalog actions loaded.
func (c *Context) CatalogSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.catalog)
}

// Reset drops the catalog and counters.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = make(map[string]domain.Action)
	c.unresolved = 0
}
