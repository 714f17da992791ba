// Package backend builds transcription backends by type.
//
// The Factory keeps a process-wide default cloud configuration that can be
// read and replaced concurrently. Acquire hands out scoped leases; with
// WithPooling, healthy backends are kept idle and reused for the same
// configuration.
//
//	f := backend.New(backend.WithPooling(2), backend.WithDefaultCloud(cloudCfg))
//	lease, err := f.Acquire(ctx, backend.Configuration{Backend: transcription.BackendCloud})
//	if err != nil {
//		return err
//	}
//	defer lease.End(true)
package backend
