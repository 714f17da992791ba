package session

import (
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/postprocess"
	"github.com/kbukum/scribe/transcription/backend"
)

// Option configures a Session.
type Option func(*Session)

// WithLocal sets the on-device model settings used when the job selects the
// local backend.
func WithLocal(c backend.LocalConfig) Option {
	return func(s *Session) { s.local = c }
}

// WithCloud sets per-session cloud overrides. Zero fields fall back to the
// factory defaults. With update set, the merged settings become the new
// defaults.
func WithCloud(c backend.CloudConfig, update bool) Option {
	return func(s *Session) {
		s.cloud = c
		s.updateDefaults = update
	}
}

// WithChain sets the post-processing chain.
func WithChain(c postprocess.Chain) Option {
	return func(s *Session) { s.chain = c }
}

// WithPersister stores completed results.
func WithPersister(p Persister) Option {
	return func(s *Session) { s.persister = p }
}

// WithStager makes a durable copy of the audio before transcription.
func WithStager(st Stager) Option {
	return func(s *Session) { s.stager = st }
}

// WithMirror copies the durable audio to secondary storage after completion.
func WithMirror(m Mirror) Option {
	return func(s *Session) { s.mirror = m }
}

// WithLogger sets the session logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithMetrics records session counters and the outcome.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithObserver is called synchronously on every phase transition.
func WithObserver(fn func(from, to Phase)) Option {
	return func(s *Session) { s.observer = fn }
}
