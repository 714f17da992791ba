package provider

// Middleware wraps the factory registered under name with cross-cutting
// behavior (logging, metrics, tracing).
type Middleware[C any, T Provider] func(name string, next Factory[C, T]) Factory[C, T]

// Chain composes multiple middlewares into one. Middlewares are applied
// in order: the first middleware is outermost.
//
// Chain(a, b, c) wraps a factory f as a(b(c(f))).
func Chain[C any, T Provider](middlewares ...Middleware[C, T]) Middleware[C, T] {
	return func(name string, next Factory[C, T]) Factory[C, T] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](name, next)
		}
		return next
	}
}
