package bootstrap

import (
	"time"

	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/postprocess"
	"github.com/kbukum/scribe/transcription/backend"
)

// Option configures the App during creation.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	factoryOpts     []backend.Option
	enhancer        postprocess.Enhancer
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the Logging settings.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithFactoryOptions appends options to the backend factory, e.g. a custom
// local engine loader.
func WithFactoryOptions(opts ...backend.Option) Option {
	return func(o *appOptions) {
		o.factoryOpts = append(o.factoryOpts, opts...)
	}
}

// WithEnhancer replaces the language-model enhancer built from settings.
func WithEnhancer(e postprocess.Enhancer) Option {
	return func(o *appOptions) {
		o.enhancer = e
	}
}
