package provider

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("provider pool closed")

// Pool keeps idle resources keyed by the configuration that built them.
// An idle resource is handed to exactly one Lease at a time.
type Pool[K comparable, T Resource] struct {
	mu      sync.Mutex
	idle    map[K][]T
	maxIdle int
	closed  bool
}

// NewPool creates a pool holding at most maxIdle idle resources per key.
// A non-positive maxIdle is treated as 1.
func NewPool[K comparable, T Resource](maxIdle int) *Pool[K, T] {
	if maxIdle <= 0 {
		maxIdle = 1
	}
	return &Pool[K, T]{idle: make(map[K][]T), maxIdle: maxIdle}
}

// Acquire leases an idle resource for key, or builds one with create.
func (p *Pool[K, T]) Acquire(ctx context.Context, key K, create func(ctx context.Context) (T, error)) (*Lease[K, T], error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	if items := p.idle[key]; len(items) > 0 {
		item := items[len(items)-1]
		p.idle[key] = items[:len(items)-1]
		p.mu.Unlock()
		return &Lease[K, T]{pool: p, key: key, item: item, reused: true}, nil
	}
	p.mu.Unlock()

	item, err := create(ctx)
	if err != nil {
		return nil, err
	}
	return &Lease[K, T]{pool: p, key: key, item: item}, nil
}

// Idle returns the number of idle resources held for key.
func (p *Pool[K, T]) Idle(key K) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle[key])
}

// Close releases every idle resource. Leases ended after Close release
// their resource instead of returning it.
func (p *Pool[K, T]) Close() error {
	p.mu.Lock()
	idle := p.idle
	p.idle = make(map[K][]T)
	p.closed = true
	p.mu.Unlock()

	var errs []error
	for _, items := range idle {
		for _, item := range items {
			errs = append(errs, item.Release())
		}
	}
	return errors.Join(errs...)
}

// put returns item to the idle set, or reports false when it must be released.
func (p *Pool[K, T]) put(key K, item T) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || len(p.idle[key]) >= p.maxIdle {
		return false
	}
	p.idle[key] = append(p.idle[key], item)
	return true
}

// Lease is scoped ownership of a resource. End must be called exactly once
// on every path; further calls are no-ops.
type Lease[K comparable, T Resource] struct {
	pool   *Pool[K, T]
	key    K
	item   T
	reused bool
	once   sync.Once
	err    error
}

// NewLease wraps a resource that is not pooled. End always releases it.
func NewLease[K comparable, T Resource](item T) *Lease[K, T] {
	return &Lease[K, T]{item: item}
}

// Value returns the leased resource.
func (l *Lease[K, T]) Value() T { return l.item }

// Reused reports whether the resource came from the idle set.
func (l *Lease[K, T]) Reused() bool { return l.reused }

// End finishes the lease. A healthy resource goes back to its pool; an
// unhealthy or unpooled one is released. The first call's error is returned
// on every call.
func (l *Lease[K, T]) End(healthy bool) error {
	l.once.Do(func() {
		if healthy && l.pool != nil && l.pool.put(l.key, l.item) {
			return
		}
		l.err = l.item.Release()
	})
	return l.err
}
