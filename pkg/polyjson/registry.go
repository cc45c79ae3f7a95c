package polyjson

import "sync"

// Registry stores the shared list of type groups a serializer resolves
// variants from. It is intentionally not global so that multiple independent
// serializers can coexist in one process; a package-level default registry
// mirrors the common single-registration-list setup.
//
// The registry is safe for concurrent use by multiple goroutines. It freezes
// when the first serializer is constructed from it: groups must be registered
// before any facade exists, and late registration is a configuration error.
type Registry struct {
	mu     sync.RWMutex
	groups []TypeGroup
	frozen bool
}

// NewRegistry creates a new, empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterTypeGroup appends one type group to the registration list.
func (r *Registry) RegisterTypeGroup(g TypeGroup) error {
	if g == nil {
		return configErrorf("cannot register a nil type group")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return configErrorf("registry is frozen: group %q registered after a serializer was constructed", g.Name())
	}
	r.groups = append(r.groups, g)
	return nil
}

// Groups returns a copy of the registered groups in registration order.
func (r *Registry) Groups() []TypeGroup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make([]TypeGroup, len(r.groups))
	copy(cp, r.groups)
	return cp
}

// freeze marks the registry immutable and returns a snapshot of its groups.
func (r *Registry) freeze() []TypeGroup {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
	cp := make([]TypeGroup, len(r.groups))
	copy(cp, r.groups)
	return cp
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by serializers
// constructed with a nil registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// RegisterTypeGroup registers a group with the default registry.
func RegisterTypeGroup(g TypeGroup) error {
	return defaultRegistry.RegisterTypeGroup(g)
}
