// Package local implements the on-device transcription backend. Audio is
// decoded to 16 kHz mono and handed to a whisper.cpp engine, either the
// whisper-cli binary or, with the "whisper" build tag, the cgo bindings.
package local
