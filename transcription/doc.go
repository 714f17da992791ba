// Package transcription defines the backend contract and the job and result
// types shared by the engines and the session.
//
// # Backends
//
//   - transcription/local: on-device whisper.cpp engine
//   - transcription/cloud: remote HTTP transcription API
//   - transcription/backend: factory that builds and pools both
//
// # Usage
//
//	job := transcription.NewJob("/tmp/note.wav", transcription.BackendCloud)
//	text, err := b.Transcribe(ctx, job.AudioPath)
package transcription
