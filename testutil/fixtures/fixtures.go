// Package fixtures writes audio and model files for tests.
package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/scribe/audio"
)

// WAV writes seconds of silence as a 16 kHz mono WAV file in a temp
// directory and returns its path.
func WAV(t testing.TB, seconds float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.wav")
	samples := make([]float32, int(seconds*audio.TargetSampleRate))
	if err := audio.EncodeWAV(path, samples, audio.TargetSampleRate); err != nil {
		t.Fatalf("fixtures: write wav: %v", err)
	}
	return path
}

// ModelFile writes a placeholder model file and returns its path.
func ModelFile(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ggml-base.bin")
	if err := os.WriteFile(path, []byte("model"), 0o644); err != nil {
		t.Fatalf("fixtures: write model: %v", err)
	}
	return path
}
