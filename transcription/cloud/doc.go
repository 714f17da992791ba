// Package cloud implements the remote transcription backend for
// OpenAI-compatible /audio/transcriptions endpoints.
//
// Transient failures (network errors, 429, 5xx, unreadable responses) are
// retried with exponential backoff through the resilience package.
package cloud
