package provider

import (
	"context"
	"time"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/observability"
)

// WithMetrics returns a Middleware that records construction count,
// duration and error codes.
func WithMetrics[C any, T Provider](metrics *observability.Metrics) Middleware[C, T] {
	return func(name string, next Factory[C, T]) Factory[C, T] {
		return func(ctx context.Context, cfg C) (T, error) {
			start := time.Now()
			p, err := next(ctx, cfg)

			status := "ok"
			if err != nil {
				status = "error"
				metrics.RecordError(ctx, string(apperrors.CodeOf(err)), "provider."+name)
			}
			metrics.RecordOperation(ctx, "provider."+name, "create", status, time.Since(start))
			return p, err
		}
	}
}
