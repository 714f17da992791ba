package provider

import (
	"context"

	"github.com/kbukum/scribe/observability"
)

// WithTracing returns a Middleware that wraps each construction in a span
// named spanName, tagged with the provider name.
func WithTracing[C any, T Provider](spanName string) Middleware[C, T] {
	return func(name string, next Factory[C, T]) Factory[C, T] {
		return func(ctx context.Context, cfg C) (T, error) {
			ctx, span := observability.StartSpan(ctx, spanName)
			defer span.End()
			observability.SetSpanAttribute(ctx, observability.AttrBackend, name)

			p, err := next(ctx, cfg)
			if err != nil {
				observability.SetSpanError(ctx, err)
			}
			return p, err
		}
	}
}
