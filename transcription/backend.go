package transcription

import "context"

// Backend is the capability contract every engine satisfies.
//
// Implementations serialise Transcribe per instance. Release is idempotent
// and Transcribe after Release fails with ENGINE_FAILURE.
type Backend interface {
	// Name identifies the backend family in logs and results.
	Name() string
	// Configure sets language and prompt for later calls. It does no I/O.
	Configure(language, prompt string)
	// Transcribe returns the raw text for the audio at audioPath.
	Transcribe(ctx context.Context, audioPath string) (string, error)
	// Release frees the engine or connection.
	Release() error
}
