package observability

import (
	"context"
	"errors"
)

// Config selects whether telemetry is exported and where.
type Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure bool   `mapstructure:"insecure"`
}

// ApplyDefaults sets the local collector endpoint when none is given.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
}

// Setup installs tracer and meter providers when cfg is enabled and returns
// the session metrics plus a shutdown function. When disabled it returns
// metrics bound to the global (no-op) meter and a no-op shutdown.
func Setup(ctx context.Context, cfg Config, serviceName, version string) (*Metrics, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		m, err := NewMetrics(Meter(serviceName))
		return m, noop, err
	}

	tc := DefaultTracerConfig(serviceName)
	tc.Endpoint, tc.Insecure, tc.ServiceVersion = cfg.Endpoint, cfg.Insecure, version
	tp, err := InitTracer(ctx, tc)
	if err != nil {
		return nil, noop, err
	}

	mc := DefaultMeterConfig(serviceName)
	mc.Endpoint, mc.Insecure, mc.ServiceVersion = cfg.Endpoint, cfg.Insecure, version
	mp, err := InitMeter(ctx, mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, noop, err
	}

	m, err := NewMetrics(Meter(serviceName))
	if err != nil {
		return nil, noop, errors.Join(err, tp.Shutdown(ctx), mp.Shutdown(ctx))
	}
	return m, func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
