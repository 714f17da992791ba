package local

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/scribe/audio"
	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/transcription"
)

// Name is the backend name reported in results and logs.
const Name = "local"

var errReleased = errors.New("backend released")

// Config configures a local backend.
type Config struct {
	ModelPath string
	// Binary is the whisper.cpp CLI used by the default loader.
	Binary string
	// Timeout bounds one engine run. Zero means no bound.
	Timeout time.Duration
	// Loader overrides how the engine is built.
	Loader EngineLoader
	Logger *logger.Logger
}

// Backend transcribes with an on-device engine. Calls are serialised.
type Backend struct {
	mu       sync.Mutex
	engine   Engine
	params   Params
	released bool
	log      *logger.Logger
}

var _ transcription.Backend = (*Backend)(nil)

// New checks the model file and loads the engine.
func New(cfg Config) (*Backend, error) {
	if cfg.ModelPath == "" {
		return nil, apperrors.ModelNotFound("")
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, apperrors.ModelNotFound(cfg.ModelPath).WithCause(err)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	loader := cfg.Loader
	if loader == nil {
		loader = defaultLoader(cfg)
	}
	engine, err := loader(cfg.ModelPath)
	if err != nil {
		return nil, apperrors.EngineFailure(err)
	}
	return &Backend{
		engine: engine,
		params: DefaultParams(),
		log:    cfg.Logger.WithComponent("backend.local"),
	}, nil
}

// Name returns "local".
func (b *Backend) Name() string { return Name }

// Configure sets language and prompt for subsequent calls. "auto" in any
// case selects auto-detection.
func (b *Backend) Configure(language, prompt string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if transcription.IsAutoLanguage(language) {
		language = ""
	}
	b.params.Language = strings.TrimSpace(language)
	b.params.Prompt = prompt
}

// Transcribe decodes the audio and runs the engine. The context is checked
// before work starts; a running engine is not interrupted.
func (b *Backend) Transcribe(ctx context.Context, audioPath string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return "", apperrors.EngineFailure(errReleased)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", apperrors.FileNotFound(audioPath)
	}

	samples, err := audio.Decode(audioPath)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	var segments []string
	err = b.engine.Process(context.WithoutCancel(ctx), samples, b.params, func(text string) {
		if text = strings.TrimSpace(text); text != "" {
			segments = append(segments, text)
		}
	})
	if err != nil {
		return "", apperrors.EngineFailure(err)
	}

	b.log.WithContext(ctx).Debug("local transcription finished", logger.Fields(
		"segments", len(segments),
		"threads", b.params.Threads,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return strings.Join(segments, " "), nil
}

// Release closes the engine. Later calls are no-ops.
func (b *Backend) Release() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return nil
	}
	b.released = true
	return b.engine.Close()
}
