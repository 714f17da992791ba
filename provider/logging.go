package provider

import (
	"context"
	"time"

	"github.com/kbukum/scribe/logger"
)

// WithLogging returns a Middleware that logs each construction with its
// duration and outcome.
func WithLogging[C any, T Provider](log *logger.Logger) Middleware[C, T] {
	return func(name string, next Factory[C, T]) Factory[C, T] {
		return func(ctx context.Context, cfg C) (T, error) {
			start := time.Now()
			p, err := next(ctx, cfg)

			fields := logger.Fields(
				"provider", name,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
			if err != nil {
				log.WithContext(ctx).Error("provider create failed", logger.MergeWithError(fields, err))
			} else {
				log.WithContext(ctx).Debug("provider created", fields)
			}
			return p, err
		}
	}
}
