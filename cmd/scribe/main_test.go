package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/scribe/config"
)

func TestParseFlags(t *testing.T) {
	o, err := parseFlags([]string{"--backend", "cloud", "-l", "de", "--prompt=Ada", "a.wav"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if o.Backend != "cloud" || o.Language != "de" || o.Prompt != "Ada" || o.Args.Audio != "a.wav" {
		t.Errorf("unexpected options %+v", o)
	}

	s := &config.Settings{Backend: "local", Language: "auto"}
	o.apply(s)
	if s.Backend != "cloud" || s.Language != "de" || s.Prompt != "Ada" {
		t.Errorf("expected flags to override settings, got %+v", s)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no file", nil},
		{"two files", []string{"a.wav", "b.wav"}},
		{"unknown flag", []string{"--verbose", "a.wav"}},
		{"backend outside choices", []string{"--backend", "gpu", "a.wav"}},
		{"flag without value", []string{"a.wav", "--config"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	var stdout bytes.Buffer
	if code := run(context.Background(), []string{"--version"}, &stdout, &bytes.Buffer{}); code != exitOK {
		t.Errorf("expected exit 0, got %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "scribe ") {
		t.Errorf("expected version banner, got %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	var stdout bytes.Buffer
	if code := run(context.Background(), []string{"--help"}, &stdout, &bytes.Buffer{}); code != exitOK {
		t.Errorf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout.String(), "--backend") {
		t.Errorf("expected usage listing flags, got %q", stdout.String())
	}
}

func TestRun_UsageError(t *testing.T) {
	var stderr bytes.Buffer
	if code := run(context.Background(), []string{"--backend", "gpu", "a.wav"}, &bytes.Buffer{}, &stderr); code != exitUsage {
		t.Errorf("expected exit %d, got %d", exitUsage, code)
	}
	if !strings.Contains(stderr.String(), "gpu") {
		t.Errorf("expected invalid choice on stderr, got %q", stderr.String())
	}
}

func TestRun_MissingModelFails(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "scribe.yml")
	yaml := "backend: local\n" +
		"local:\n  model_path: " + filepath.Join(dir, "missing.bin") + "\n" +
		"storage:\n  base_path: " + filepath.Join(dir, "data") + "\n" +
		"database:\n  dsn: " + filepath.Join(dir, "scribe.db") + "\n" +
		"logging:\n  level: error\n"
	if err := os.WriteFile(cfg, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	audio := filepath.Join(dir, "a.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"--config", cfg, audio}, &bytes.Buffer{}, &stderr)
	if code != exitFailed {
		t.Errorf("expected exit %d, got %d (%s)", exitFailed, code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "CONFIGURATION_FAILED") {
		t.Errorf("expected configuration failure on stderr, got %q", stderr.String())
	}
}
