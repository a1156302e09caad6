package widget

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps widget type tags to lazily constructed renderers. The tag
// universe is fixed at wiring time; lookups for unregistered tags return a
// not-found result rather than an error.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	loaded    map[string]Renderer
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		loaded:    make(map[string]Renderer),
	}
}

// Register binds a factory to a tag. A later registration for the same tag
// replaces the earlier one and discards any renderer already constructed.
func (r *Registry) Register(tag string, f Factory) {
	key := canonicalTag(tag)
	if key == "" || f == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = f
	delete(r.loaded, key)
}

// Resolve returns the renderer for tag, constructing it on first use and
// caching the instance. Absence is an ordinary result: callers fall back to
// the unknown-widget placeholder.
func (r *Registry) Resolve(tag string) (Renderer, bool) {
	key := canonicalTag(tag)

	r.mu.RLock()
	if ren, ok := r.loaded[key]; ok {
		r.mu.RUnlock()
		return ren, true
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if ren, ok := r.loaded[key]; ok {
		return ren, true
	}
	f, ok := r.factories[key]
	if !ok {
		return nil, false
	}
	ren := f()
	r.loaded[key] = ren
	return ren, true
}

// Loaded reports whether the renderer for tag has been constructed yet.
func (r *Registry) Loaded(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.loaded[canonicalTag(tag)]
	return ok
}

// Tags returns all registered tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func canonicalTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
