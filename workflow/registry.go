package workflow

import (
	"slices"
	"sync"
)

// Registry stores committed workflows by ID for dispatch by name.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]*Workflow
}

// NewRegistry creates a new workflow registry.
func NewRegistry() *Registry {
	return &Registry{
		workflows: make(map[string]*Workflow),
	}
}

// Register adds a workflow. A workflow with the same ID is replaced.
func (r *Registry) Register(wf *Workflow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workflows[wf.ID()] = wf
}

// Get retrieves a workflow by ID, or nil.
func (r *Registry) Get(id string) *Workflow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.workflows[id]
}

// Has reports whether a workflow with the given ID exists.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.workflows[id]
	return ok
}

// IDs returns the registered workflow IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.workflows))
	for id := range r.workflows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered workflows.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workflows)
}
