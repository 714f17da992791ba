package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/postprocess"
	"github.com/kbukum/scribe/recording"
	"github.com/kbukum/scribe/storage/local"
	"github.com/kbukum/scribe/testutil/fixtures"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/backend"
	localbackend "github.com/kbukum/scribe/transcription/local"
)

type fakeBackend struct {
	text     string
	err      error
	onCall   func()
	calls    atomic.Int32
	released atomic.Int32
	mu       sync.Mutex
	language string
	prompt   string
	lastPath string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Configure(language, prompt string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.language, f.prompt = language, prompt
}

func (f *fakeBackend) Transcribe(_ context.Context, path string) (string, error) {
	f.calls.Add(1)
	f.lastPath = path
	if f.onCall != nil {
		f.onCall()
	}
	return f.text, f.err
}

func (f *fakeBackend) Release() error {
	f.released.Add(1)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	results []*transcription.Result
	err     error
}

func (f *fakeStore) Save(_ context.Context, r *transcription.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.results = append(f.results, r)
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

// factoryWith returns a factory whose local constructor hands out b.
func factoryWith(b *fakeBackend, builds *atomic.Int32, opts ...backend.Option) *backend.Factory {
	f := backend.New(opts...)
	f.Register(transcription.BackendLocal, func(context.Context, backend.Configuration) (transcription.Backend, error) {
		if builds != nil {
			builds.Add(1)
		}
		return b, nil
	})
	return f
}

func TestRun_Completed(t *testing.T) {
	b := &fakeBackend{text: "  hello world \n"}
	store := &fakeStore{}
	job := transcription.NewJob(fixtures.WAV(t, 1), transcription.BackendLocal)
	job.Language = "de"
	job.Prompt = "names: Ada"

	var transitions []Phase
	s := New(job, factoryWith(b, nil), WithPersister(store), WithObserver(func(_, to Phase) {
		transitions = append(transitions, to)
	}))
	out := s.Run(context.Background())

	if out.Phase != Completed {
		t.Fatalf("expected Completed, got %s (%v)", out.Phase, out.Err)
	}
	if out.Result.Text != "hello world" {
		t.Errorf("expected trimmed text, got %q", out.Result.Text)
	}
	if out.Result.EnhancedText != nil {
		t.Errorf("expected no enhanced text, got %q", *out.Result.EnhancedText)
	}
	if out.Result.Duration != 1 {
		t.Errorf("expected probed duration 1s, got %v", out.Result.Duration)
	}
	if b.language != "de" || b.prompt != "names: Ada" {
		t.Errorf("expected backend configured with job settings, got %q %q", b.language, b.prompt)
	}
	if store.count() != 1 {
		t.Errorf("expected one persisted result, got %d", store.count())
	}
	want := []Phase{Loading, ProcessingAudio, Transcribing, Completed}
	if len(transitions) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], transitions[i])
		}
	}
	if s.Phase() != Completed {
		t.Errorf("expected phase Completed, got %s", s.Phase())
	}
	if b.released.Load() != 1 {
		t.Errorf("expected unpooled backend released once, got %d", b.released.Load())
	}
}

type countingEngine struct{ calls *atomic.Int32 }

func (e countingEngine) Process(_ context.Context, _ []float32, _ localbackend.Params, on func(string)) error {
	e.calls.Add(1)
	on("never")
	return nil
}

func (e countingEngine) Close() error { return nil }

func TestRun_LocalMissingFile(t *testing.T) {
	model := fixtures.ModelFile(t)
	var engineCalls atomic.Int32
	f := backend.New(backend.WithEngineLoader(func(string) (localbackend.Engine, error) {
		return countingEngine{calls: &engineCalls}, nil
	}))
	store := &fakeStore{}
	job := transcription.NewJob(filepath.Join(t.TempDir(), "gone.wav"), transcription.BackendLocal)

	out := New(job, f, WithLocal(backend.LocalConfig{ModelPath: model}), WithPersister(store)).Run(context.Background())

	if out.Phase != Error {
		t.Fatalf("expected Error, got %s", out.Phase)
	}
	if out.Code() != apperrors.ErrCodeFileNotFound {
		t.Errorf("expected FILE_NOT_FOUND, got %s", out.Code())
	}
	if engineCalls.Load() != 0 {
		t.Errorf("expected engine never invoked, got %d calls", engineCalls.Load())
	}
	if store.count() != 0 {
		t.Error("expected nothing persisted")
	}
}

func TestRun_ConfigurationFailed(t *testing.T) {
	tests := []struct {
		name  string
		job   *transcription.Job
		opts  []Option
		cause apperrors.ErrorCode
	}{
		{"missing model", transcription.NewJob("a.wav", transcription.BackendLocal),
			[]Option{WithLocal(backend.LocalConfig{ModelPath: "/nonexistent/model.bin"})}, apperrors.ErrCodeModelNotFound},
		{"empty cloud key", transcription.NewJob("a.wav", transcription.BackendCloud),
			[]Option{WithCloud(backend.CloudConfig{Endpoint: "https://api.example.com/v1"}, false)}, apperrors.ErrCodeEmptyCredential},
		{"unknown backend", transcription.NewJob("a.wav", "gpu"), nil, apperrors.ErrCodeUnsupportedBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := New(tt.job, backend.New(), tt.opts...).Run(context.Background())
			if out.Phase != Error {
				t.Fatalf("expected Error, got %s", out.Phase)
			}
			if out.Code() != apperrors.ErrCodeConfigurationFailed {
				t.Errorf("expected CONFIGURATION_FAILED, got %s", out.Code())
			}
			if !apperrors.HasCode(out.Err, tt.cause) {
				t.Errorf("expected cause %s in %v", tt.cause, out.Err)
			}
		})
	}
}

func TestRun_BackendErrorPreserved(t *testing.T) {
	b := &fakeBackend{err: apperrors.ServiceUnavailable(503)}
	store := &fakeStore{}
	out := New(transcription.NewJob(fixtures.WAV(t, 0.5), transcription.BackendLocal), factoryWith(b, nil),
		WithPersister(store)).Run(context.Background())

	if out.Phase != Error || out.Code() != apperrors.ErrCodeServiceUnavailable {
		t.Errorf("expected Error(SERVICE_UNAVAILABLE), got %s %v", out.Phase, out.Err)
	}
	if store.count() != 0 {
		t.Error("expected nothing persisted")
	}
	if b.released.Load() != 1 {
		t.Errorf("expected backend released, got %d", b.released.Load())
	}
}

func TestRun_CancelBeforeConstruction(t *testing.T) {
	var builds atomic.Int32
	b := &fakeBackend{text: "x"}
	s := New(transcription.NewJob(fixtures.WAV(t, 0.1), transcription.BackendLocal), factoryWith(b, &builds))
	s.Cancel()
	out := s.Run(context.Background())

	if out.Phase != Cancelled {
		t.Fatalf("expected Cancelled, got %s", out.Phase)
	}
	if out.Err != nil {
		t.Errorf("cancellation is not an error, got %v", out.Err)
	}
	if builds.Load() != 0 {
		t.Errorf("expected zero factory calls, got %d", builds.Load())
	}
}

func TestRun_CancelDuringTranscription(t *testing.T) {
	store := &fakeStore{}
	b := &fakeBackend{text: "finished anyway"}
	s := New(transcription.NewJob(fixtures.WAV(t, 0.1), transcription.BackendLocal), factoryWith(b, nil), WithPersister(store))
	b.onCall = s.Cancel

	out := s.Run(context.Background())
	if out.Phase != Cancelled {
		t.Fatalf("expected Cancelled, got %s", out.Phase)
	}
	if store.count() != 0 {
		t.Error("expected nothing persisted after cancel")
	}
	if b.released.Load() != 1 {
		t.Errorf("expected backend released once, got %d", b.released.Load())
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := &fakeBackend{text: "x", onCall: cancel}
	out := New(transcription.NewJob(fixtures.WAV(t, 0.1), transcription.BackendLocal), factoryWith(b, nil)).Run(ctx)
	if out.Phase != Cancelled {
		t.Errorf("expected Cancelled, got %s", out.Phase)
	}
}

func TestRun_ReplacementApplied(t *testing.T) {
	b := &fakeBackend{text: "foo baz"}
	store := &fakeStore{}
	chain := postprocess.Chain{
		Replacer:       postprocess.NewReplacer(map[string]string{"foo": "bar"}),
		ReplaceEnabled: true,
	}
	out := New(transcription.NewJob(fixtures.WAV(t, 0.1), transcription.BackendLocal), factoryWith(b, nil),
		WithChain(chain), WithPersister(store)).Run(context.Background())

	if out.Phase != Completed {
		t.Fatalf("expected Completed, got %s (%v)", out.Phase, out.Err)
	}
	if store.results[0].Text != "bar baz" {
		t.Errorf("expected persisted raw text 'bar baz', got %q", store.results[0].Text)
	}
}

func TestRun_Enhancement(t *testing.T) {
	tests := []struct {
		name         string
		enhancer     postprocess.EnhancerFunc
		wantEnhanced *string
	}{
		{"success", func(_ context.Context, text string) (string, error) { return text + ".", nil }, strPtr("hello there.")},
		{"failure degrades", func(context.Context, string) (string, error) {
			return "", apperrors.EnhancementFailed(errors.New("llm down"))
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{text: "hello there"}
			store := &fakeStore{}
			var sawEnhancing bool
			chain := postprocess.Chain{Enhancer: tt.enhancer, EnhanceEnabled: true}
			out := New(transcription.NewJob(fixtures.WAV(t, 0.1), transcription.BackendLocal), factoryWith(b, nil),
				WithChain(chain), WithPersister(store),
				WithObserver(func(_, to Phase) { sawEnhancing = sawEnhancing || to == Enhancing }),
			).Run(context.Background())

			if out.Phase != Completed {
				t.Fatalf("expected Completed, got %s (%v)", out.Phase, out.Err)
			}
			if !sawEnhancing {
				t.Error("expected Enhancing phase")
			}
			got := store.results[0]
			if got.Text != "hello there" {
				t.Errorf("expected raw text kept, got %q", got.Text)
			}
			switch {
			case tt.wantEnhanced == nil && got.EnhancedText != nil:
				t.Errorf("expected no enhanced text, got %q", *got.EnhancedText)
			case tt.wantEnhanced != nil && (got.EnhancedText == nil || *got.EnhancedText != *tt.wantEnhanced):
				t.Errorf("expected enhanced %q, got %v", *tt.wantEnhanced, got.EnhancedText)
			}
		})
	}
}

func TestRun_EnhancerDisabled(t *testing.T) {
	var called bool
	chain := postprocess.Chain{
		Enhancer: postprocess.EnhancerFunc(func(_ context.Context, s string) (string, error) {
			called = true
			return s, nil
		}),
	}
	out := New(transcription.NewJob(fixtures.WAV(t, 0.1), transcription.BackendLocal), factoryWith(&fakeBackend{text: "x"}, nil),
		WithChain(chain)).Run(context.Background())
	if out.Phase != Completed || called {
		t.Errorf("expected completion without enhancement, got %s called=%v", out.Phase, called)
	}
}

func TestRun_PersistenceFailureStillCompletes(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	out := New(transcription.NewJob(fixtures.WAV(t, 0.1), transcription.BackendLocal), factoryWith(&fakeBackend{text: "x"}, nil),
		WithPersister(store)).Run(context.Background())
	if out.Phase != Completed {
		t.Errorf("expected Completed despite persistence failure, got %s", out.Phase)
	}
}

func TestRun_Twice(t *testing.T) {
	b := &fakeBackend{text: "x"}
	s := New(transcription.NewJob(fixtures.WAV(t, 0.1), transcription.BackendLocal), factoryWith(b, nil))
	if out := s.Run(context.Background()); out.Phase != Completed {
		t.Fatalf("expected Completed, got %s", out.Phase)
	}
	out := s.Run(context.Background())
	if out.Phase != Error || out.Code() != apperrors.ErrCodeInvalidState {
		t.Errorf("expected Error(INVALID_STATE), got %s %v", out.Phase, out.Err)
	}
	if b.calls.Load() != 1 {
		t.Errorf("expected backend untouched by second run, got %d calls", b.calls.Load())
	}
	if s.Phase() != Completed {
		t.Errorf("expected phase to stay Completed, got %s", s.Phase())
	}
}

type fakeMirror struct {
	mu     sync.Mutex
	copied []string
}

func (m *fakeMirror) Copy(_ context.Context, _, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copied = append(m.copied, path)
	return nil
}

func TestRun_StagesDurableCopy(t *testing.T) {
	files, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	b := &fakeBackend{text: "x"}
	mirror := &fakeMirror{}
	src := fixtures.WAV(t, 0.25)
	job := transcription.NewJob(src, transcription.BackendLocal)

	out := New(job, factoryWith(b, nil), WithStager(recording.NewStore(files, nil)), WithMirror(mirror)).Run(context.Background())
	if out.Phase != Completed {
		t.Fatalf("expected Completed, got %s (%v)", out.Phase, out.Err)
	}
	staged, _ := files.Path(recording.Key(job.ID, src))
	if b.lastPath != staged {
		t.Errorf("expected backend to read durable copy %q, got %q", staged, b.lastPath)
	}
	if out.Result.AudioRef != staged {
		t.Errorf("expected audio ref %q, got %q", staged, out.Result.AudioRef)
	}
	if out.Result.Duration != 0.25 {
		t.Errorf("expected duration from durable copy, got %v", out.Result.Duration)
	}
	if len(mirror.copied) != 1 || mirror.copied[0] != staged {
		t.Errorf("expected mirror of durable copy, got %v", mirror.copied)
	}
}

func TestRun_PooledLeaseReturned(t *testing.T) {
	var builds atomic.Int32
	b := &fakeBackend{text: "x"}
	f := factoryWith(b, &builds, backend.WithPooling(1))
	defer func() { _ = f.Close() }()

	for i := 0; i < 2; i++ {
		out := New(transcription.NewJob(fixtures.WAV(t, 0.1), transcription.BackendLocal), f).Run(context.Background())
		if out.Phase != Completed {
			t.Fatalf("run %d: expected Completed, got %s", i, out.Phase)
		}
	}
	if builds.Load() != 1 {
		t.Errorf("expected pooled backend reused, got %d builds", builds.Load())
	}
	if b.released.Load() != 0 {
		t.Errorf("expected healthy backend kept in pool, got %d releases", b.released.Load())
	}

	b.err = apperrors.EngineFailure(errors.New("crash"))
	out := New(transcription.NewJob(fixtures.WAV(t, 0.1), transcription.BackendLocal), f).Run(context.Background())
	if out.Phase != Error {
		t.Fatalf("expected Error, got %s", out.Phase)
	}
	if b.released.Load() != 1 {
		t.Errorf("expected failed backend discarded, got %d releases", b.released.Load())
	}
}

func TestPhaseString(t *testing.T) {
	if Transcribing.String() != "transcribing" {
		t.Errorf("expected 'transcribing', got %q", Transcribing.String())
	}
	if Phase(99).String() != "unknown" {
		t.Errorf("expected 'unknown', got %q", Phase(99).String())
	}
	for _, p := range []Phase{Completed, Error, Cancelled} {
		if !p.Terminal() {
			t.Errorf("expected %s to be terminal", p)
		}
	}
	if Loading.Terminal() {
		t.Error("loading is not terminal")
	}
}

func strPtr(s string) *string { return &s }
