package postprocess

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/llm"
)

var errEmptyCompletion = errors.New("empty completion")

// Enhancer rewrites a transcript, for example with a language model.
type Enhancer interface {
	Enhance(ctx context.Context, text string) (string, error)
}

// EnhancerFunc adapts a function to the Enhancer interface.
type EnhancerFunc func(ctx context.Context, text string) (string, error)

// Enhance calls f.
func (f EnhancerFunc) Enhance(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// LLMEnhancer sends the transcript to a chat model with a fixed system prompt.
type LLMEnhancer struct {
	completer    llm.Completer
	systemPrompt string
}

// NewLLMEnhancer creates an enhancer backed by c.
func NewLLMEnhancer(c llm.Completer, systemPrompt string) *LLMEnhancer {
	return &LLMEnhancer{completer: c, systemPrompt: systemPrompt}
}

// Enhance returns the trimmed completion. Failures and empty completions are
// ENHANCEMENT_FAILED.
func (e *LLMEnhancer) Enhance(ctx context.Context, text string) (string, error) {
	out, err := llm.Complete(ctx, e.completer, e.systemPrompt, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", apperrors.EnhancementFailed(err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", apperrors.EnhancementFailed(errEmptyCompletion)
	}
	return out, nil
}
