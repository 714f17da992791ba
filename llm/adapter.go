package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kbukum/scribe/httpclient"
)

// ErrNoDialect is returned by NewWithDialect for a nil dialect.
var ErrNoDialect = errors.New("llm: dialect is required")

// Adapter is a config-driven LLM client that works with any provider via the
// Dialect pattern. The HTTP client supplies auth, timeout and retry; the
// Dialect supplies the provider mapping.
type Adapter struct {
	name      string
	client    *httpclient.Client
	dialect   Dialect
	model     string
	temp      float64
	maxTokens int
}

// New creates an LLM adapter from config using the global dialect registry.
func New(cfg Config) (*Adapter, error) {
	cfg.applyDefaults()

	dialect, err := GetDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	return newAdapter(dialect, cfg)
}

// NewWithDialect creates an LLM adapter with an explicit dialect instance.
func NewWithDialect(dialect Dialect, cfg Config) (*Adapter, error) {
	if dialect == nil {
		return nil, ErrNoDialect
	}
	cfg.applyDefaults()
	if cfg.Name == "" {
		cfg.Name = dialect.Name() + "-llm"
	}
	return newAdapter(dialect, cfg)
}

func newAdapter(dialect Dialect, cfg Config) (*Adapter, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = dialect.DefaultBaseURL()
	}
	httpCfg := httpclient.Config{
		BaseURL: baseURL,
		Timeout: cfg.Timeout,
		Headers: cfg.Headers,
		Retry:   cfg.Retry,
		TLS:     cfg.TLS,
	}
	if cfg.APIKey != "" {
		httpCfg.Auth = httpclient.BearerAuth(cfg.APIKey)
	}
	client, err := httpclient.New(httpCfg)
	if err != nil {
		return nil, fmt.Errorf("llm: create http client: %w", err)
	}

	return &Adapter{
		name:      cfg.Name,
		client:    client,
		dialect:   dialect,
		model:     cfg.Model,
		temp:      cfg.Temperature,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Name returns the adapter name.
func (a *Adapter) Name() string { return a.name }

// Close releases idle connections.
func (a *Adapter) Close() { a.client.Close() }

// Execute sends a completion request and returns the full response.
func (a *Adapter) Execute(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	a.applyDefaults(&req)

	body, err := a.dialect.BuildRequest(req)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: build request: %w", err)
	}

	resp, err := httpclient.Post[json.RawMessage](ctx, a.client, a.dialect.ChatPath(), body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: execute: %w", err)
	}

	result, err := a.dialect.ParseResponse(resp.Data)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: parse response: %w", err)
	}
	return *result, nil
}

// Dialect returns the dialect used by this adapter.
func (a *Adapter) Dialect() Dialect { return a.dialect }

func (a *Adapter) applyDefaults(req *CompletionRequest) {
	if req.Model == "" {
		req.Model = a.model
	}
	if req.Temperature == 0 {
		req.Temperature = a.temp
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = a.maxTokens
	}
}
