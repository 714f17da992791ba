package version

import (
	"strings"
	"testing"
)

func restore() func() {
	v, c, b := Version, GitCommit, BuildTime
	return func() { Version, GitCommit, BuildTime = v, c, b }
}

func TestGet_LinkerValues(t *testing.T) {
	defer restore()()
	Version, GitCommit, BuildTime = "1.2.0", "abcdef0123456", "2026-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.2.0" {
		t.Errorf("expected version 1.2.0, got %q", info.Version)
	}
	if info.GitCommit != "abcdef0" {
		t.Errorf("expected commit shortened to 7 chars, got %q", info.GitCommit)
	}
	if info.BuildTime != "2026-01-15T10:30:00Z" {
		t.Errorf("expected build time kept, got %q", info.BuildTime)
	}
}

func TestShort(t *testing.T) {
	defer restore()()
	Version, GitCommit = "1.2.0", "abc1234"
	if got := Short(); !strings.HasPrefix(got, "1.2.0-abc1234") {
		t.Errorf("expected 1.2.0-abc1234 prefix, got %q", got)
	}
}

func TestString(t *testing.T) {
	defer restore()()
	Version, GitCommit, BuildTime = "0.3.0", "", "2026-01-15T10:30:00Z"
	got := String()
	if !strings.HasPrefix(got, "scribe 0.3.0") {
		t.Errorf("expected banner prefix, got %q", got)
	}
	if !strings.Contains(got, "(built 2026-01-15T10:30:00Z)") {
		t.Errorf("expected build time in banner, got %q", got)
	}
}
