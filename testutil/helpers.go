package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/scribe/component"
)

// THelper ties component lifecycles to a testing.T.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps t.
func T(t testing.TB) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context passed to Start, Stop and Health.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Start starts c and stops it when the test ends. A start failure fails the
// test immediately.
func (h *THelper) Start(c component.Component) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// RequireHealthy fails the test unless c reports healthy.
func (h *THelper) RequireHealthy(c component.Component) {
	h.t.Helper()
	if got := c.Health(h.ctx); got.Status != component.StatusHealthy {
		h.t.Fatalf("expected %s healthy, got %s: %s", c.Name(), got.Status, got.Message)
	}
}
