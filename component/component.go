package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed piece of infrastructure such as the
// result database or the backend factory.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes the component.
	Start(ctx context.Context) error

	// Stop shuts the component down and releases its resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Func builds a Component from closures. Nil hooks are no-ops.
type Func struct {
	ID      string
	OnStart func(ctx context.Context) error
	OnStop  func(ctx context.Context) error
	Check   func(ctx context.Context) error
}

func (f *Func) Name() string { return f.ID }

func (f *Func) Start(ctx context.Context) error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart(ctx)
}

func (f *Func) Stop(ctx context.Context) error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop(ctx)
}

func (f *Func) Health(ctx context.Context) Health {
	h := Health{Name: f.ID, Status: StatusHealthy}
	if f.Check != nil {
		if err := f.Check(ctx); err != nil {
			h.Status, h.Message = StatusUnhealthy, err.Error()
		}
	}
	return h
}
