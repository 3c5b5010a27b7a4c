package types

import "fmt"

// Registry resolves type names used in source. Each analysis is given its
// registry explicitly.
type Registry struct {
	types map[string]*Type
	order []*Type
}

// NewRegistry returns a registry holding the canonical types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]*Type)}
	for _, t := range Builtins() {
		_ = r.Register(t)
	}
	return r
}

// Register adds t under its name.
func (r *Registry) Register(t *Type) error {
	if _, exists := r.types[t.Name]; exists {
		return fmt.Errorf("%w: type %s", ErrDuplicate, t.Name)
	}
	r.types[t.Name] = t
	r.order = append(r.order, t)
	return nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Types returns every registered type in registration order.
func (r *Registry) Types() []*Type {
	return append([]*Type(nil), r.order...)
}
