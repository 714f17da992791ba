// Package ollama registers the "ollama" llm dialect for Ollama's native
// /api/chat endpoint.
package ollama

import (
	"encoding/json"
	"fmt"

	"github.com/kbukum/scribe/llm"
)

// DialectName is the registered name for the Ollama dialect.
const DialectName = "ollama"

const defaultBaseURL = "http://localhost:11434"

func init() {
	llm.RegisterDialect(DialectName, &Dialect{})
}

// Dialect maps llm types to the Ollama chat API.
type Dialect struct{}

// Name returns "ollama".
func (d *Dialect) Name() string { return DialectName }

// DefaultBaseURL returns the local Ollama address.
func (d *Dialect) DefaultBaseURL() string { return defaultBaseURL }

// ChatPath returns the chat endpoint.
func (d *Dialect) ChatPath() string { return "/api/chat" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
}

// BuildRequest creates a non-streaming chat request.
func (d *Dialect) BuildRequest(req llm.CompletionRequest) (any, error) {
	all := req.AllMessages()
	msgs := make([]chatMessage, 0, len(all))
	for _, m := range all {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}
	out := chatRequest{Model: req.Model, Messages: msgs}
	if req.Temperature != 0 || req.MaxTokens != 0 {
		out.Options = &chatOptions{Temperature: req.Temperature, NumPredict: req.MaxTokens}
	}
	return out, nil
}

// ParseResponse decodes a chat response.
func (d *Dialect) ParseResponse(body []byte) (*llm.CompletionResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	return &llm.CompletionResponse{
		Content: resp.Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}
