package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/scribe/resilience"
	"github.com/kbukum/scribe/security"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures the HTTP client.
type Config struct {
	// BaseURL is the base URL prepended to all request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the default request timeout. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Auth configures default authentication applied to all requests.
	// Individual requests can override this.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Retry configures retry behavior. Nil disables retry.
	Retry *resilience.RetryPolicy `yaml:"-" mapstructure:"-"`

	// TLS configures the client side of HTTPS connections. Nil uses the
	// system defaults.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return c.TLS.Validate()
}

// DefaultRetryPolicy returns a retry policy that retries transient HTTP errors.
func DefaultRetryPolicy() *resilience.RetryPolicy {
	p := resilience.DefaultRetryPolicy()
	p.RetryIf = IsRetryable
	return &p
}
