package provider

import "fmt"

// Registry holds all configured OAuth providers and allows lookup by
// provider name. It performs no auth logic itself.
type Registry struct {
	clients map[string]*Client
}

// NewRegistry registers the given provider clients by name.
// Provider names must be unique.
func NewRegistry(list ...*Client) *Registry {
	m := make(map[string]*Client)
	for _, c := range list {
		m[c.Name()] = c
	}
	return &Registry{clients: m}
}

// Get returns the provider client by name or an error if not registered.
func (r *Registry) Get(name string) (*Client, error) {
	c, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("unknown oauth provider: %s", name)
	}
	return c, nil
}

// Names lists the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}
