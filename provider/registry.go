package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotRegistered is returned by Create for an unknown factory name.
var ErrNotRegistered = errors.New("provider factory not registered")

// Registry manages named factories that share a configuration type.
type Registry[C any, T Provider] struct {
	mu          sync.RWMutex
	factories   map[string]Factory[C, T]
	middlewares []Middleware[C, T]
}

// NewRegistry creates a new empty Registry.
func NewRegistry[C any, T Provider]() *Registry[C, T] {
	return &Registry[C, T]{
		factories: make(map[string]Factory[C, T]),
	}
}

// RegisterFactory registers a named factory, replacing any previous one.
func (r *Registry[C, T]) RegisterFactory(name string, factory Factory[C, T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Use appends middlewares applied to every Create call. The first
// middleware is outermost.
func (r *Registry[C, T]) Use(mws ...Middleware[C, T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mws...)
}

// Create instantiates a provider using the named factory and config.
func (r *Registry[C, T]) Create(ctx context.Context, name string, cfg C) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	mws := r.middlewares
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return Chain(mws...)(name, factory)(ctx, cfg)
}

// Has reports whether a factory is registered under name.
func (r *Registry[C, T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// List returns sorted names of all registered factories.
func (r *Registry[C, T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
