// Package provider implements a generic factory registry and a keyed
// resource pool using Go generics.
//
// A Registry maps names to typed factories that share one configuration
// type. Middleware wraps every construction with logging, metrics or
// tracing:
//
//	reg := provider.NewRegistry[Config, Backend]()
//	reg.RegisterFactory("cloud", newCloud)
//	reg.Use(
//	    provider.WithLogging[Config, Backend](log),
//	    provider.WithTracing[Config, Backend]("backend.create"),
//	)
//	b, err := reg.Create(ctx, "cloud", cfg)
//
// A Pool keeps idle Resources keyed by the configuration that built them and
// hands each one to a single Lease at a time:
//
//	lease, err := pool.Acquire(ctx, key, func(ctx context.Context) (Backend, error) {
//	    return reg.Create(ctx, "cloud", cfg)
//	})
//	defer lease.End(healthy)
package provider
