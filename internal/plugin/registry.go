package plugin

import (
	"fmt"
	"sync"
)

// Registry maps plugin names to plugins so settings files can reference them
// by name. Registration order is irrelevant; invocation order is always the
// order of the names in the settings.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds a plugin to the registry. Returns an error if a plugin with
// the same name already exists or the plugin has no name.
func (r *Registry) Register(p Plugin) error {
	if p.Name == "" {
		return fmt.Errorf("plugin name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[p.Name]; exists {
		return fmt.Errorf("plugin %s already registered", p.Name)
	}
	r.plugins[p.Name] = p
	return nil
}

// Get retrieves a plugin by name.
func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	if !ok {
		return Plugin{}, fmt.Errorf("plugin %s not found", name)
	}
	return p, nil
}

// Has checks if a plugin with the given name exists.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.plugins[name]
	return ok
}

// Resolve maps an ordered list of plugin names to plugins, preserving the
// list's order. Unknown names fail resolution.
func (r *Registry) Resolve(names []string) ([]Plugin, error) {
	out := make([]Plugin, 0, len(names))
	for _, name := range names {
		p, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// globalRegistry is the default plugin registry used throughout the application.
var globalRegistry = NewRegistry()

// DefaultRegistry returns the global plugin registry.
func DefaultRegistry() *Registry { return globalRegistry }

// Register adds a plugin to the global registry.
func Register(p Plugin) error { return globalRegistry.Register(p) }
