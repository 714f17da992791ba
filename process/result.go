package process

import (
	"strings"
	"time"
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process was killed.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
}

// StderrTail returns at most n trailing bytes of stderr, trimmed.
func (r *Result) StderrTail(n int) string {
	s := strings.TrimSpace(string(r.Stderr))
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}
