// Package openai registers the "openai" llm dialect for OpenAI-compatible
// /chat/completions endpoints.
package openai

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kbukum/scribe/llm"
)

// DialectName is the registered name for the OpenAI dialect.
const DialectName = "openai"

const defaultBaseURL = "https://api.openai.com/v1"

var errNoChoices = errors.New("openai: response has no choices")

func init() {
	llm.RegisterDialect(DialectName, &Dialect{})
}

// Dialect maps llm types to the OpenAI chat completions API.
type Dialect struct{}

// Name returns "openai".
func (d *Dialect) Name() string { return DialectName }

// DefaultBaseURL returns the public OpenAI API base.
func (d *Dialect) DefaultBaseURL() string { return defaultBaseURL }

// ChatPath returns the chat endpoint relative to the base URL.
func (d *Dialect) ChatPath() string { return "/chat/completions" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message llm.Message `json:"message"`
	} `json:"choices"`
	Usage llm.Usage `json:"usage"`
}

// BuildRequest creates a chat completions request.
func (d *Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	out := chatRequest{Model: req.Model, Messages: req.AllMessages(), MaxTokens: req.MaxTokens}
	if req.Temperature != 0 {
		t := req.Temperature
		out.Temperature = &t
	}
	return out, nil
}

// ParseResponse returns the first choice.
func (d *Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errNoChoices
	}
	return &llm.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage:   resp.Usage,
	}, nil
}
