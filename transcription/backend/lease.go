package backend

import (
	"github.com/kbukum/scribe/provider"
	"github.com/kbukum/scribe/transcription"
)

// Lease is scoped ownership of one backend. End must be called on every
// path; later calls are no-ops.
type Lease struct {
	inner *provider.Lease[key, transcription.Backend]
}

// Backend returns the leased backend.
func (l *Lease) Backend() transcription.Backend { return l.inner.Value() }

// Reused reports whether the backend came from the pool.
func (l *Lease) Reused() bool { return l.inner.Reused() }

// End returns a healthy backend to the pool, or releases it.
func (l *Lease) End(healthy bool) error { return l.inner.End(healthy) }
