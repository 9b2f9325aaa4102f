package oracle

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps clause names to shared Clause values so that every tree
// leaf referring to the same name uses one clause. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	clauses map[string]Clause
}

// NewRegistry returns a registry holding the given clauses.
func NewRegistry(clauses ...Clause) *Registry {
	r := &Registry{clauses: make(map[string]Clause)}
	for _, c := range clauses {
		r.clauses[c.Name()] = c
	}
	return r
}

// DefaultRegistry returns a registry with the reference oracles: the
// three axis passthroughs and the unit cube.
func DefaultRegistry() *Registry {
	return NewRegistry(AxisClause(0), AxisClause(1), AxisClause(2), CubeClause())
}

// Register adds c. Registering a second clause under a name that is
// already taken is an error.
func (r *Registry) Register(c Clause) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, ok := r.clauses[name]; ok {
		return fmt.Errorf("oracle: clause %q already registered", name)
	}
	r.clauses[name] = c
	return nil
}

// Lookup returns the clause registered under name.
func (r *Registry) Lookup(name string) (Clause, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clauses[name]
	return c, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clauses))
	for n := range r.clauses {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
