// Package transcript stores completed transcription results with GORM on
// SQLite. Store satisfies the session's persistence collaborator.
package transcript
