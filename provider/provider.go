package provider

import "context"

// Provider is implemented by anything a Registry constructs.
type Provider interface {
	// Name returns the provider's name.
	Name() string
}

// Factory creates a provider instance from a typed configuration.
type Factory[C any, T Provider] func(ctx context.Context, cfg C) (T, error)
