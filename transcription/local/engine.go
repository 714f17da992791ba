package local

import (
	"context"
	"runtime"
)

// Params are the decoding parameters handed to an Engine for one run.
type Params struct {
	// Language is an ISO code. Empty means auto-detect.
	Language string
	Prompt   string
	Threads  int

	SuppressBlank     bool
	SuppressNonSpeech bool
	// NoContext disables carrying text context across windows.
	NoContext         bool
	Temperature       float32
	EntropyThreshold  float32
	NoSpeechThreshold float32
}

// DefaultParams returns parameters tuned to keep silence and noise out of
// the transcript.
func DefaultParams() Params {
	return Params{
		Threads:           DefaultThreads(),
		SuppressBlank:     true,
		SuppressNonSpeech: true,
		NoContext:         true,
		Temperature:       0,
		EntropyThreshold:  2.4,
		NoSpeechThreshold: 0.6,
	}
}

// DefaultThreads is NumCPU-2 clamped to [1, 8].
func DefaultThreads() int {
	return clampThreads(runtime.NumCPU() - 2)
}

func clampThreads(n int) int {
	switch {
	case n < 1:
		return 1
	case n > 8:
		return 8
	default:
		return n
	}
}

// Engine is the inference engine behind a local backend. Process emits
// segment texts through onSegment in order and returns a non-nil error on a
// non-zero engine status.
type Engine interface {
	Process(ctx context.Context, samples []float32, params Params, onSegment func(text string)) error
	Close() error
}

// EngineLoader loads the model at modelPath into a ready Engine.
type EngineLoader func(modelPath string) (Engine, error)
