package provider

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

type testConfig struct {
	Model string
}

// testProvider implements Resource for testing.
type testProvider struct {
	name     string
	model    string
	released atomic.Int32
}

func (p *testProvider) Name() string { return p.name }
func (p *testProvider) Release() error {
	p.released.Add(1)
	return nil
}

func newTestFactory(name string) Factory[testConfig, *testProvider] {
	return func(_ context.Context, cfg testConfig) (*testProvider, error) {
		return &testProvider{name: name, model: cfg.Model}, nil
	}
}

func TestRegistryRegisterAndCreate(t *testing.T) {
	reg := NewRegistry[testConfig, *testProvider]()
	reg.RegisterFactory("local", newTestFactory("local"))

	p, err := reg.Create(context.Background(), "local", testConfig{Model: "base"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name() != "local" || p.model != "base" {
		t.Errorf("unexpected provider %+v", p)
	}
	if !reg.Has("local") || reg.Has("cloud") {
		t.Error("Has reported wrong registrations")
	}
}

func TestRegistryCreateUnregistered(t *testing.T) {
	reg := NewRegistry[testConfig, *testProvider]()
	_, err := reg.Create(context.Background(), "missing", testConfig{})
	if !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	if !strings.Contains(err.Error(), `"missing"`) {
		t.Errorf("expected name in error, got %q", err.Error())
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry[testConfig, *testProvider]()
	reg.RegisterFactory("local", newTestFactory("local"))
	reg.RegisterFactory("cloud", newTestFactory("cloud"))

	names := reg.List()
	if len(names) != 2 || names[0] != "cloud" || names[1] != "local" {
		t.Errorf("expected sorted [cloud local], got %v", names)
	}
}

func TestRegistryUse_ChainOrder(t *testing.T) {
	var order []string
	mw := func(tag string) Middleware[testConfig, *testProvider] {
		return func(name string, next Factory[testConfig, *testProvider]) Factory[testConfig, *testProvider] {
			return func(ctx context.Context, cfg testConfig) (*testProvider, error) {
				order = append(order, tag+":before:"+name)
				p, err := next(ctx, cfg)
				order = append(order, tag+":after")
				return p, err
			}
		}
	}

	reg := NewRegistry[testConfig, *testProvider]()
	reg.RegisterFactory("local", newTestFactory("local"))
	reg.Use(mw("A"), mw("B"))

	if _, err := reg.Create(context.Background(), "local", testConfig{}); err != nil {
		t.Fatal(err)
	}
	want := []string{"A:before:local", "B:before:local", "B:after", "A:after"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestPool_ReusesHealthyResource(t *testing.T) {
	pool := NewPool[string, *testProvider](1)
	created := 0
	create := func(context.Context) (*testProvider, error) {
		created++
		return &testProvider{name: "p"}, nil
	}

	l1, err := pool.Acquire(context.Background(), "k", create)
	if err != nil {
		t.Fatal(err)
	}
	if l1.Reused() {
		t.Error("first lease should not be reused")
	}
	first := l1.Value()
	if err := l1.End(true); err != nil {
		t.Fatal(err)
	}
	if pool.Idle("k") != 1 {
		t.Errorf("expected 1 idle, got %d", pool.Idle("k"))
	}

	l2, _ := pool.Acquire(context.Background(), "k", create)
	if !l2.Reused() || l2.Value() != first {
		t.Error("expected the idle resource to be reused")
	}
	if created != 1 {
		t.Errorf("expected 1 creation, got %d", created)
	}

	// A second concurrent lease for the same key gets a fresh resource.
	l3, _ := pool.Acquire(context.Background(), "k", create)
	if l3.Value() == first {
		t.Error("idle resource handed to two leases")
	}
	_ = l2.End(true)
	_ = l3.End(true)
	if l3.Value().released.Load() != 1 {
		t.Error("expected resource over maxIdle to be released")
	}
}

func TestPool_UnhealthyIsReleased(t *testing.T) {
	pool := NewPool[string, *testProvider](2)
	l, _ := pool.Acquire(context.Background(), "k", func(context.Context) (*testProvider, error) {
		return &testProvider{name: "p"}, nil
	})
	_ = l.End(false)
	_ = l.End(true)

	if l.Value().released.Load() != 1 {
		t.Errorf("expected exactly one release, got %d", l.Value().released.Load())
	}
	if pool.Idle("k") != 0 {
		t.Error("unhealthy resource must not be pooled")
	}
}

func TestPool_KeysAreIsolated(t *testing.T) {
	pool := NewPool[string, *testProvider](1)
	l, _ := pool.Acquire(context.Background(), "a", func(context.Context) (*testProvider, error) {
		return &testProvider{name: "a"}, nil
	})
	_ = l.End(true)

	l2, _ := pool.Acquire(context.Background(), "b", func(context.Context) (*testProvider, error) {
		return &testProvider{name: "b"}, nil
	})
	if l2.Reused() || l2.Value().Name() != "b" {
		t.Error("resource leaked across keys")
	}
}

func TestPool_CreateError(t *testing.T) {
	pool := NewPool[string, *testProvider](1)
	boom := errors.New("boom")
	_, err := pool.Acquire(context.Background(), "k", func(context.Context) (*testProvider, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected create error, got %v", err)
	}
}

func TestPool_Close(t *testing.T) {
	pool := NewPool[string, *testProvider](1)
	create := func(context.Context) (*testProvider, error) { return &testProvider{name: "p"}, nil }
	idle, _ := pool.Acquire(context.Background(), "k", create)
	_ = idle.End(true)
	busy, _ := pool.Acquire(context.Background(), "other", create)

	if err := pool.Close(); err != nil {
		t.Fatal(err)
	}
	if idle.Value().released.Load() != 1 {
		t.Error("expected idle resource released on Close")
	}

	_ = busy.End(true)
	if busy.Value().released.Load() != 1 {
		t.Error("expected lease ended after Close to release")
	}
	if _, err := pool.Acquire(context.Background(), "k", create); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestNewLease_AlwaysReleases(t *testing.T) {
	p := &testProvider{name: "p"}
	l := NewLease[string](p)
	_ = l.End(true)
	_ = l.End(true)
	if p.released.Load() != 1 {
		t.Errorf("expected one release, got %d", p.released.Load())
	}
}
