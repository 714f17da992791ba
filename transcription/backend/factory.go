package backend

import (
	"context"
	"errors"
	"sync/atomic"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/provider"
	"github.com/kbukum/scribe/resilience"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/cloud"
	"github.com/kbukum/scribe/transcription/local"
)

// Constructor builds a backend from a resolved configuration.
type Constructor = provider.Factory[Configuration, transcription.Backend]

// Factory builds backends by type and optionally pools them.
type Factory struct {
	registry *provider.Registry[Configuration, transcription.Backend]
	defaults atomic.Pointer[CloudConfig]
	pool     *provider.Pool[key, transcription.Backend]

	loader  local.EngineLoader
	retry   *resilience.RetryPolicy
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger passed to backends and construction logging.
func WithLogger(log *logger.Logger) Option {
	return func(f *Factory) { f.log = log }
}

// WithMetrics records construction and retry metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(f *Factory) { f.metrics = m }
}

// WithPooling keeps up to maxIdle idle backends per configuration.
func WithPooling(maxIdle int) Option {
	return func(f *Factory) {
		if maxIdle > 0 {
			f.pool = provider.NewPool[key, transcription.Backend](maxIdle)
		}
	}
}

// WithEngineLoader overrides how local engines are loaded.
func WithEngineLoader(l local.EngineLoader) Option {
	return func(f *Factory) { f.loader = l }
}

// WithRetryPolicy overrides the cloud retry policy.
func WithRetryPolicy(p resilience.RetryPolicy) Option {
	return func(f *Factory) { f.retry = &p }
}

// WithDefaultCloud sets the initial default cloud configuration.
func WithDefaultCloud(c CloudConfig) Option {
	return func(f *Factory) { f.defaults.Store(&c) }
}

// New creates a Factory with the local and cloud constructors registered.
func New(opts ...Option) *Factory {
	f := &Factory{registry: provider.NewRegistry[Configuration, transcription.Backend]()}
	f.defaults.Store(&CloudConfig{})
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logger.NewNop()
	}
	f.log = f.log.WithComponent("backend.factory")

	f.registry.Use(
		provider.WithLogging[Configuration, transcription.Backend](f.log),
		provider.WithTracing[Configuration, transcription.Backend](observability.SpanBackendCreate),
	)
	if f.metrics != nil {
		f.registry.Use(provider.WithMetrics[Configuration, transcription.Backend](f.metrics))
	}
	f.Register(transcription.BackendLocal, f.newLocal)
	f.Register(transcription.BackendCloud, f.newCloud)
	return f
}

// Register installs or replaces the constructor for kind.
func (f *Factory) Register(kind transcription.BackendType, c Constructor) {
	f.registry.RegisterFactory(string(kind), c)
}

// Backends lists the registered backend types.
func (f *Factory) Backends() []string {
	return f.registry.List()
}

// DefaultCloud returns the current default cloud configuration.
func (f *Factory) DefaultCloud() CloudConfig {
	return *f.defaults.Load()
}

// SetDefaultCloud replaces the default cloud configuration.
func (f *Factory) SetDefaultCloud(c CloudConfig) {
	f.defaults.Store(&c)
}

// resolve merges the cloud defaults into cfg. The returned commit applies
// UpdateDefaults and must be called only once the backend was obtained.
func (f *Factory) resolve(cfg Configuration) (Configuration, func()) {
	commit := func() {}
	if cfg.Backend == transcription.BackendCloud {
		override := cfg.Cloud
		cfg.Cloud = f.DefaultCloud().merge(override)
		if cfg.UpdateDefaults {
			commit = func() { f.updateDefaults(override) }
		}
	}
	cfg.UpdateDefaults = false
	return cfg, commit
}

// updateDefaults applies o on top of the current defaults. Concurrent
// updates are merged, not lost.
func (f *Factory) updateDefaults(o CloudConfig) {
	for {
		cur := f.defaults.Load()
		next := cur.merge(o)
		if f.defaults.CompareAndSwap(cur, &next) {
			return
		}
	}
}

// Create builds a new backend that the caller owns and must Release.
func (f *Factory) Create(ctx context.Context, cfg Configuration) (transcription.Backend, error) {
	if !f.registry.Has(string(cfg.Backend)) {
		return nil, apperrors.UnsupportedBackend(string(cfg.Backend))
	}
	cfg, commit := f.resolve(cfg)
	b, err := f.create(ctx, cfg)
	if err != nil {
		return nil, err
	}
	commit()
	return b, nil
}

func (f *Factory) create(ctx context.Context, cfg Configuration) (transcription.Backend, error) {
	b, err := f.registry.Create(ctx, string(cfg.Backend), cfg)
	if err != nil {
		if errors.Is(err, provider.ErrNotRegistered) {
			return nil, apperrors.UnsupportedBackend(string(cfg.Backend))
		}
		return nil, apperrors.ConfigurationFailed(string(cfg.Backend), err)
	}
	return b, nil
}

// Acquire leases a backend for cfg. With pooling enabled an idle backend
// built from the same configuration is reused.
func (f *Factory) Acquire(ctx context.Context, cfg Configuration) (*Lease, error) {
	if !f.registry.Has(string(cfg.Backend)) {
		return nil, apperrors.UnsupportedBackend(string(cfg.Backend))
	}
	cfg, commit := f.resolve(cfg)

	if f.pool == nil {
		b, err := f.create(ctx, cfg)
		if err != nil {
			return nil, err
		}
		commit()
		return &Lease{inner: provider.NewLease[key](b)}, nil
	}

	inner, err := f.pool.Acquire(ctx, cfg.key(), func(ctx context.Context) (transcription.Backend, error) {
		return f.create(ctx, cfg)
	})
	if err != nil {
		if errors.Is(err, provider.ErrPoolClosed) {
			return nil, apperrors.InvalidState("backend factory is closed")
		}
		return nil, err
	}
	commit()
	if inner.Reused() {
		f.log.WithContext(ctx).Debug("reusing pooled backend", logger.Fields(logger.FieldBackend, string(cfg.Backend)))
	}
	return &Lease{inner: inner}, nil
}

// Close releases every idle pooled backend.
func (f *Factory) Close() error {
	if f.pool == nil {
		return nil
	}
	return f.pool.Close()
}

func (f *Factory) newLocal(_ context.Context, cfg Configuration) (transcription.Backend, error) {
	return local.New(local.Config{
		ModelPath: cfg.Local.ModelPath,
		Binary:    cfg.Local.Binary,
		Timeout:   cfg.Local.Timeout,
		Loader:    f.loader,
		Logger:    f.log,
	})
}

func (f *Factory) newCloud(_ context.Context, cfg Configuration) (transcription.Backend, error) {
	return cloud.New(cloud.Config{
		Endpoint: cfg.Cloud.Endpoint,
		APIKey:   cfg.Cloud.APIKey,
		Model:    cfg.Cloud.Model,
		Timeout:  cfg.Cloud.Timeout,
		TLS:      &cfg.Cloud.TLS,
		Retry:    f.retry,
		Logger:   f.log,
		Metrics:  f.metrics,
	})
}
