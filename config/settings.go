package config

import (
	"fmt"
	"time"

	"github.com/kbukum/scribe/database"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/security"
	"github.com/kbukum/scribe/storage"
	"github.com/kbukum/scribe/validation"
)

// Backend kinds accepted in the backend field.
const (
	BackendLocal = "local"
	BackendCloud = "cloud"
)

// Enhancement dialects accepted in the enhancement.dialect field.
const (
	DialectOpenAI = "openai"
	DialectOllama = "ollama"
)

// Defaults for the transcription sections.
const (
	DefaultLanguage      = "auto"
	DefaultCloudEndpoint = "https://api.openai.com/v1/audio/transcriptions"
	DefaultCloudModel    = "whisper-1"
	DefaultCloudTimeout  = 120 * time.Second
	DefaultLocalBinary   = "whisper-cli"
	DefaultLocalTimeout  = 10 * time.Minute
	DefaultEnhanceModel  = "gpt-4o-mini"
	DefaultEnhanceTime   = 60 * time.Second
	DefaultEnhancePrompt = "Clean up the following dictated transcript. Fix punctuation, capitalization and obvious recognition errors. Keep the meaning and language unchanged. Reply with the corrected text only."
)

// Settings is the full scribe configuration surface.
type Settings struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Backend  string `yaml:"backend" mapstructure:"backend"`
	Language string `yaml:"language" mapstructure:"language"`
	Prompt   string `yaml:"prompt" mapstructure:"prompt"`
	// PoolSize > 0 keeps that many idle backends per configuration for reuse.
	PoolSize int    `yaml:"pool_size" mapstructure:"pool_size" validate:"gte=0,lte=16"`

	Local         LocalSettings        `yaml:"local" mapstructure:"local"`
	Cloud         CloudSettings        `yaml:"cloud" mapstructure:"cloud"`
	Replacements  ReplacementSettings  `yaml:"replacements" mapstructure:"replacements"`
	Enhancement   EnhancementSettings  `yaml:"enhancement" mapstructure:"enhancement"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Mirror        storage.Config       `yaml:"mirror" mapstructure:"mirror"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// LocalSettings configures the on-device engine.
type LocalSettings struct {
	ModelPath string        `yaml:"model_path" mapstructure:"model_path"`
	Binary    string        `yaml:"binary" mapstructure:"binary"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
}

// CloudSettings configures the remote transcription API.
type CloudSettings struct {
	Endpoint string             `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,httpurl"`
	APIKey   string             `yaml:"api_key" mapstructure:"api_key"`
	Model    string             `yaml:"model" mapstructure:"model"`
	Timeout  time.Duration      `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	TLS      security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// Replacement is one literal find/replace rule.
type Replacement struct {
	From string `yaml:"from" mapstructure:"from" validate:"required"`
	To   string `yaml:"to" mapstructure:"to"`
}

// ReplacementSettings configures the word replacement step. Rules are a list
// rather than a map because config keys are case-folded when loaded.
type ReplacementSettings struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Entries []Replacement `yaml:"entries" mapstructure:"entries" validate:"dive"`
}

// Map returns the rules as a from->to map. Later duplicates win.
func (r ReplacementSettings) Map() map[string]string {
	m := make(map[string]string, len(r.Entries))
	for _, e := range r.Entries {
		m[e.From] = e.To
	}
	return m
}

// EnhancementSettings configures the language-model enhancement step.
type EnhancementSettings struct {
	Enabled      bool               `yaml:"enabled" mapstructure:"enabled"`
	Dialect      string             `yaml:"dialect" mapstructure:"dialect"`
	BaseURL      string             `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,httpurl"`
	APIKey       string             `yaml:"api_key" mapstructure:"api_key"`
	Model        string             `yaml:"model" mapstructure:"model"`
	SystemPrompt string             `yaml:"system_prompt" mapstructure:"system_prompt"`
	Timeout      time.Duration      `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	TLS          security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills zero-valued fields. It is safe to call more than once.
func (s *Settings) ApplyDefaults() {
	s.ServiceConfig.ApplyDefaults()
	if s.Backend == "" {
		s.Backend = BackendLocal
	}
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	if s.Local.Binary == "" {
		s.Local.Binary = DefaultLocalBinary
	}
	if s.Local.Timeout == 0 {
		s.Local.Timeout = DefaultLocalTimeout
	}
	if s.Cloud.Endpoint == "" {
		s.Cloud.Endpoint = DefaultCloudEndpoint
	}
	if s.Cloud.Model == "" {
		s.Cloud.Model = DefaultCloudModel
	}
	if s.Cloud.Timeout == 0 {
		s.Cloud.Timeout = DefaultCloudTimeout
	}
	if s.Enhancement.Dialect == "" {
		s.Enhancement.Dialect = DialectOpenAI
	}
	if s.Enhancement.Model == "" {
		s.Enhancement.Model = DefaultEnhanceModel
	}
	if s.Enhancement.SystemPrompt == "" {
		s.Enhancement.SystemPrompt = DefaultEnhancePrompt
	}
	if s.Enhancement.Timeout == 0 {
		s.Enhancement.Timeout = DefaultEnhanceTime
	}
	if s.Storage.Provider == "" {
		s.Storage.Provider = storage.ProviderLocal
	}
	s.Storage.ApplyDefaults()
	if s.Mirror.Enabled {
		if s.Mirror.Provider == "" {
			s.Mirror.Provider = storage.ProviderS3
		}
		s.Mirror.ApplyDefaults()
	}
	s.Database.ApplyDefaults()
	s.Observability.ApplyDefaults()
}

// Validate checks struct rules and the cross-field rules that depend on the
// selected backend. Backend credentials are not checked here; the backend
// factory reports those with their own error codes.
func (s *Settings) Validate() error {
	if err := s.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(s); err != nil {
		return err
	}
	v := validation.New().
		OneOf("backend", s.Backend, []string{BackendLocal, BackendCloud}).
		OneOf("enhancement.dialect", s.Enhancement.Dialect, []string{DialectOpenAI, DialectOllama})
	if s.Enhancement.Enabled && s.Enhancement.Dialect == DialectOpenAI {
		v.Required("enhancement.api_key", s.Enhancement.APIKey)
	}
	if s.Enhancement.Enabled && s.Enhancement.Dialect == DialectOllama {
		v.Required("enhancement.base_url", s.Enhancement.BaseURL)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	if err := s.Cloud.TLS.Validate(); err != nil {
		return fmt.Errorf("config.cloud: %w", err)
	}
	if err := s.Enhancement.TLS.Validate(); err != nil {
		return fmt.Errorf("config.enhancement: %w", err)
	}
	if err := s.Storage.Validate(); err != nil {
		return fmt.Errorf("config.storage: %w", err)
	}
	if s.Mirror.Enabled {
		if err := s.Mirror.Validate(); err != nil {
			return fmt.Errorf("config.mirror: %w", err)
		}
	}
	if err := s.Database.Validate(); err != nil {
		return fmt.Errorf("config.database: %w", err)
	}
	return nil
}

// Load reads Settings for the scribe service, applies defaults and validates.
func Load(opts ...LoaderOption) (*Settings, error) {
	var s Settings
	if err := LoadConfig("scribe", &s, opts...); err != nil {
		return nil, err
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
