package agent

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maintains agent types loaded from external bundles. It starts
// empty, is populated once during the bundle-loading phase, and is
// read-only for the rest of the run.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Loadable
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: map[string]Loadable{}}
}

// Register installs a loadable agent type. Returns an error if the name is
// empty, the type has no constructor, or the name already exists.
func (r *Registry) Register(l Loadable) error {
	if l.Name == "" {
		return fmt.Errorf("agent: name is required")
	}
	if l.NewWithContext == nil && l.New == nil {
		return fmt.Errorf("agent: constructor is required for %s", l.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[l.Name]; exists {
		return fmt.Errorf("agent: %s already registered", l.Name)
	}
	r.types[l.Name] = l
	return nil
}

// Lookup returns the loadable type registered under name.
func (r *Registry) Lookup(name string) (Loadable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.types[name]
	return l, ok
}

// Names returns the sorted registered type names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports how many types are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}
