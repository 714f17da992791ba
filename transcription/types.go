package transcription

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BackendType selects the engine family for a job.
type BackendType string

const (
	// BackendLocal runs an on-device model.
	BackendLocal BackendType = "local"
	// BackendCloud calls a remote transcription API.
	BackendCloud BackendType = "cloud"
)

// Valid reports whether t names a known backend family.
func (t BackendType) Valid() bool {
	return t == BackendLocal || t == BackendCloud
}

// Job is one unit of work: a captured audio file plus the knobs for it.
type Job struct {
	ID        string      `json:"id"`
	AudioPath string      `json:"audio_path"`
	Language  string      `json:"language,omitempty"`
	Prompt    string      `json:"prompt,omitempty"`
	Backend   BackendType `json:"backend"`
	// Duration is the audio length in seconds. Zero means unknown.
	Duration float64 `json:"duration,omitempty"`
}

// NewJob creates a job with a fresh ID.
func NewJob(audioPath string, backend BackendType) *Job {
	return &Job{
		ID:        uuid.NewString(),
		AudioPath: audioPath,
		Backend:   backend,
	}
}

// Result is the persisted outcome of a completed job. It is not modified
// after creation.
type Result struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	EnhancedText *string   `json:"enhanced_text,omitempty"`
	Duration     float64   `json:"duration"`
	AudioRef     string    `json:"audio_ref"`
	Backend      string    `json:"backend"`
	Language     string    `json:"language,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// FinalText returns the enhanced text when present, otherwise the raw text.
func (r *Result) FinalText() string {
	if r.EnhancedText != nil {
		return *r.EnhancedText
	}
	return r.Text
}

// IsAutoLanguage reports whether lang asks the engine to detect the language.
func IsAutoLanguage(lang string) bool {
	lang = strings.TrimSpace(lang)
	return lang == "" || strings.EqualFold(lang, "auto")
}
