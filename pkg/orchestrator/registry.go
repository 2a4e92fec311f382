package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Job is a rendered job definition ready to hand to a scheduler.
type Job struct {
	// Name is the scheduler-facing job name, e.g. "noble_stable_krita".
	Name string
	// Config is the rendered configuration document.
	Config string
}

// Publisher delivers rendered jobs to a destination: a stream, a directory,
// or a live Jenkins controller.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, job Job) error
}

// Registry stores publishers by name, providing discovery and duplication
// safeguards.
type Registry struct {
	mu         sync.RWMutex
	publishers map[string]Publisher
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		publishers: make(map[string]Publisher),
	}
}

// Register adds a publisher by its Name(). Duplicate names return an error.
func (r *Registry) Register(publisher Publisher) error {
	if publisher == nil {
		return fmt.Errorf("orchestrator: publisher is required")
	}
	name := publisher.Name()
	if name == "" {
		return fmt.Errorf("orchestrator: publisher name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.publishers[name]; exists {
		return fmt.Errorf("orchestrator: publisher %q already registered", name)
	}

	r.publishers[name] = publisher
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(publisher Publisher) {
	if err := r.Register(publisher); err != nil {
		panic(err)
	}
}

// Get retrieves a publisher by name.
func (r *Registry) Get(name string) (Publisher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	publisher, ok := r.publishers[name]
	if !ok {
		return nil, fmt.Errorf("orchestrator: publisher %q not found", name)
	}
	return publisher, nil
}

// List returns a sorted list of publisher names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.publishers))
	for name := range r.publishers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a publisher is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.publishers[name]
	return ok
}
