package local

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/kbukum/scribe/audio"
	"github.com/kbukum/scribe/process"
)

// CLIEngine runs the whisper.cpp command-line binary once per call.
type CLIEngine struct {
	binary    string
	modelPath string
	runner    *process.Runner
}

// NewCLILoader returns a loader that produces CLIEngines for binary.
func NewCLILoader(binary string, runner *process.Runner) EngineLoader {
	return func(modelPath string) (Engine, error) {
		return &CLIEngine{binary: binary, modelPath: modelPath, runner: runner}, nil
	}
}

// Process writes samples to a temporary 16 kHz WAV and runs the binary on it.
// Every non-empty stdout line is one segment.
func (e *CLIEngine) Process(ctx context.Context, samples []float32, params Params, onSegment func(string)) error {
	tmp, err := os.CreateTemp("", "scribe-*.wav")
	if err != nil {
		return fmt.Errorf("create temp audio: %w", err)
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(path) }()

	if err := audio.EncodeWAV(path, samples, audio.TargetSampleRate); err != nil {
		return fmt.Errorf("write temp audio: %w", err)
	}

	res, err := e.runner.Run(ctx, process.Command{Binary: e.binary, Args: e.args(path, params)})
	if err != nil {
		return err
	}
	for _, line := range process.Lines(res.Stdout) {
		onSegment(line)
	}
	return nil
}

func (e *CLIEngine) args(path string, p Params) []string {
	lang := p.Language
	if lang == "" {
		lang = "auto"
	}
	args := []string{
		"-m", e.modelPath,
		"-f", path,
		"-l", lang,
		"-t", strconv.Itoa(p.Threads),
		"-tp", formatFloat(p.Temperature),
		"-et", formatFloat(p.EntropyThreshold),
		"-nth", formatFloat(p.NoSpeechThreshold),
		"--no-timestamps",
		"--no-prints",
	}
	if p.NoContext {
		args = append(args, "-mc", "0")
	}
	if p.SuppressNonSpeech {
		args = append(args, "--suppress-nst")
	}
	if p.Prompt != "" {
		args = append(args, "--prompt", p.Prompt)
	}
	return args
}

// Close is a no-op; nothing stays resident between runs.
func (e *CLIEngine) Close() error { return nil }

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}
