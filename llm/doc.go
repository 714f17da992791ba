// Package llm provides a config-driven chat-completion client used by the
// transcript enhancement step.
//
// The adapter works with any provider via the Dialect pattern, similar to
// how database/sql works with driver packages. Dialects for OpenAI-compatible
// APIs and Ollama live in the openai and ollama subpackages and register
// themselves on import.
//
// # Usage
//
//	import (
//	    "github.com/kbukum/scribe/llm"
//	    _ "github.com/kbukum/scribe/llm/ollama"
//	)
//
//	adapter, err := llm.New(llm.Config{
//	    Dialect: "ollama",
//	    BaseURL: "http://localhost:11434",
//	    Model:   "qwen2.5:1.5b",
//	})
//
//	text, err := llm.Complete(ctx, adapter, "Fix punctuation.", transcript)
package llm
