//go:build whisper

package local

import (
	"context"
	"fmt"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

func defaultLoader(Config) EngineLoader { return LoadWhisperCPP }

// WhisperCPP runs inference in-process through the whisper.cpp bindings.
type WhisperCPP struct {
	model whisper.Model
}

// LoadWhisperCPP loads the ggml model at modelPath.
func LoadWhisperCPP(modelPath string) (Engine, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model: %w", err)
	}
	return &WhisperCPP{model: model}, nil
}

// Process runs one inference on a fresh context. Blank and non-speech
// suppression use the library defaults, which are both on.
func (w *WhisperCPP) Process(_ context.Context, samples []float32, params Params, onSegment func(string)) error {
	wctx, err := w.model.NewContext()
	if err != nil {
		return fmt.Errorf("create whisper context: %w", err)
	}

	lang := params.Language
	if lang == "" {
		lang = "auto"
	}
	if err := wctx.SetLanguage(lang); err != nil {
		return fmt.Errorf("set language %q: %w", lang, err)
	}
	wctx.SetTranslate(false)
	wctx.SetThreads(uint(params.Threads))
	wctx.SetTemperature(params.Temperature)
	wctx.SetEntropyThold(params.EntropyThreshold)
	if params.NoContext {
		wctx.SetMaxContext(0)
	}
	if params.Prompt != "" {
		wctx.SetInitialPrompt(params.Prompt)
	}

	return wctx.Process(samples, nil, func(s whisper.Segment) {
		onSegment(s.Text)
	}, nil)
}

// Close frees the model.
func (w *WhisperCPP) Close() error {
	return w.model.Close()
}
