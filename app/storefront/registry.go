package storefront

import (
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Registry keeps the workspaces of recently seen visitors. When it is full the
// least recently used workspace is evicted and disposed; its durable state
// stays in storage and is reloaded if the visitor returns.
type Registry struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *Workspace]
	build func(id string) *Workspace
}

// NewRegistry creates a registry holding up to size workspaces built by build.
func NewRegistry(size int, build func(id string) *Workspace) (*Registry, error) {
	if build == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("workspace builder is required"))
	}
	cache, err := lru.NewWithEvict(size, func(_ string, ws *Workspace) {
		ws.Dispose()
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return &Registry{cache: cache, build: build}, nil
}

// Get returns the workspace of visitor id, creating it on first use.
func (r *Registry) Get(id string) *Workspace {
	if ws, ok := r.cache.Get(id); ok {
		return ws
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.cache.Get(id); ok {
		return ws
	}
	ws := r.build(id)
	r.cache.Add(id, ws)
	return ws
}

// Peek returns the workspace of id without creating it or refreshing its recency.
func (r *Registry) Peek(id string) (*Workspace, bool) {
	return r.cache.Peek(id)
}

// Forget evicts and disposes the workspace of id.
func (r *Registry) Forget(id string) {
	r.cache.Remove(id)
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Close disposes every workspace.
func (r *Registry) Close() {
	r.cache.Purge()
}
