package cloud

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/resilience"
)

type captured struct {
	mu     sync.Mutex
	auth   string
	fields map[string]string
	file   string
	data   []byte
}

func audioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memo.wav")
	if err := os.WriteFile(path, []byte("RIFF-audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// recordingPolicy records delays instead of sleeping.
func recordingPolicy(delays *[]time.Duration) *resilience.RetryPolicy {
	p := resilience.DefaultRetryPolicy()
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
	return &p
}

func newBackend(t *testing.T, url string, delays *[]time.Duration) *Backend {
	t.Helper()
	b, err := New(Config{Endpoint: url, APIKey: "sk-test", Retry: recordingPolicy(delays)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = b.Release() })
	return b
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		code apperrors.ErrorCode
	}{
		{"empty key", Config{Endpoint: "https://api.example.com/v1"}, apperrors.ErrCodeEmptyCredential},
		{"blank key", Config{Endpoint: "https://api.example.com/v1", APIKey: "  "}, apperrors.ErrCodeEmptyCredential},
		{"no scheme", Config{Endpoint: "api.example.com", APIKey: "k"}, apperrors.ErrCodeInvalidEndpoint},
		{"ftp", Config{Endpoint: "ftp://api.example.com", APIKey: "k"}, apperrors.ErrCodeInvalidEndpoint},
		{"no host", Config{Endpoint: "https://", APIKey: "k"}, apperrors.ErrCodeInvalidEndpoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if !apperrors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestTranscribe_Success(t *testing.T) {
	var got captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.mu.Lock()
		defer got.mu.Unlock()
		got.auth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		got.fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			got.fields[k] = v[0]
		}
		f, hdr, err := r.FormFile("file")
		if err == nil {
			got.file = hdr.Filename
			got.data, _ = io.ReadAll(f)
		}
		_, _ = w.Write([]byte(`{"text":"  Hello world. "}`))
	}))
	defer srv.Close()

	var delays []time.Duration
	b := newBackend(t, srv.URL+"/v1/audio/transcriptions", &delays)
	b.Configure("en", "Names: Ada")

	text, err := b.Transcribe(context.Background(), audioFile(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "Hello world." {
		t.Errorf("expected trimmed text, got %q", text)
	}
	if got.auth != "Bearer sk-test" {
		t.Errorf("expected bearer auth, got %q", got.auth)
	}
	if got.fields["model"] != "whisper-1" || got.fields["language"] != "en" || got.fields["prompt"] != "Names: Ada" {
		t.Errorf("unexpected form fields %v", got.fields)
	}
	if got.file != "memo.wav" || string(got.data) != "RIFF-audio" {
		t.Errorf("unexpected file part %q %q", got.file, got.data)
	}
	if len(delays) != 0 {
		t.Errorf("expected no retries, got %v", delays)
	}
}

func TestTranscribe_OmitsAutoLanguageAndEmptyPrompt(t *testing.T) {
	var fields map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		fields = r.MultipartForm.Value
		_, _ = w.Write([]byte(`{"text":"ok"}`))
	}))
	defer srv.Close()

	for _, lang := range []string{"", "auto", "Auto"} {
		var delays []time.Duration
		b := newBackend(t, srv.URL, &delays)
		b.Configure(lang, "")
		if _, err := b.Transcribe(context.Background(), audioFile(t)); err != nil {
			t.Fatal(err)
		}
		if _, ok := fields["language"]; ok {
			t.Errorf("language %q: expected field omitted", lang)
		}
		if _, ok := fields["prompt"]; ok {
			t.Error("expected empty prompt omitted")
		}
	}
}

func TestTranscribe_PlainTextBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\n plain transcript \n"))
	}))
	defer srv.Close()

	var delays []time.Duration
	text, err := newBackend(t, srv.URL, &delays).Transcribe(context.Background(), audioFile(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "plain transcript" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestTranscribe_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		code     apperrors.ErrorCode
		attempts int32
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad key"}`, apperrors.ErrCodeAuthenticationFailed, 1},
		{"bad request", http.StatusBadRequest, `{"error":"bad audio"}`, apperrors.ErrCodeInvalidAudioFormat, 1},
		{"rate limited", http.StatusTooManyRequests, ``, apperrors.ErrCodeRateLimited, 4},
		{"unavailable", http.StatusServiceUnavailable, ``, apperrors.ErrCodeServiceUnavailable, 4},
		{"bad gateway", http.StatusBadGateway, ``, apperrors.ErrCodeServiceUnavailable, 4},
		{"teapot", http.StatusTeapot, ``, apperrors.ErrCodeInvalidResponse, 4},
		{"empty 200", http.StatusOK, `   `, apperrors.ErrCodeInvalidResponse, 4},
		{"json without text", http.StatusOK, `{"result":"x"}`, apperrors.ErrCodeInvalidResponse, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			var delays []time.Duration
			_, err := newBackend(t, srv.URL, &delays).Transcribe(context.Background(), audioFile(t))
			if !apperrors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
			if attempts.Load() != tt.attempts {
				t.Errorf("expected %d attempts, got %d", tt.attempts, attempts.Load())
			}
		})
	}
}

func TestTranscribe_RetryDelays(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var delays []time.Duration
	_, err := newBackend(t, srv.URL, &delays).Transcribe(context.Background(), audioFile(t))
	if !apperrors.HasCode(err, apperrors.ErrCodeServiceUnavailable) {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %v", err)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("expected delays %v, got %v", want, delays)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay %d: expected %v, got %v", i, want[i], delays[i])
		}
	}
}

func TestTranscribe_RecoversAfterTransientFailure(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"text":"third time"}`))
	}))
	defer srv.Close()

	var delays []time.Duration
	text, err := newBackend(t, srv.URL, &delays).Transcribe(context.Background(), audioFile(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "third time" || len(delays) != 2 {
		t.Errorf("expected success after 2 retries, got %q with delays %v", text, delays)
	}
}

func TestTranscribe_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var delays []time.Duration
	_, err := newBackend(t, url, &delays).Transcribe(context.Background(), audioFile(t))
	if !apperrors.HasCode(err, apperrors.ErrCodeNetworkError) {
		t.Errorf("expected NETWORK_ERROR, got %v", err)
	}
	if len(delays) != 3 {
		t.Errorf("expected network errors to be retried, got %v", delays)
	}
}

func TestTranscribe_CanceledDuringWait(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	p := resilience.DefaultRetryPolicy()
	p.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}
	b, err := New(Config{Endpoint: srv.URL, APIKey: "k", Retry: &p})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = b.Release() }()

	_, err = b.Transcribe(ctx, audioFile(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", attempts.Load())
	}
}

func TestTranscribe_MissingFile(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
	}))
	defer srv.Close()

	var delays []time.Duration
	_, err := newBackend(t, srv.URL, &delays).Transcribe(context.Background(), filepath.Join(t.TempDir(), "gone.wav"))
	if !apperrors.HasCode(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
	if attempts.Load() != 0 {
		t.Error("no request expected for a missing file")
	}
}

func TestRelease_Idempotent(t *testing.T) {
	var delays []time.Duration
	b := newBackend(t, "https://api.example.com/v1", &delays)
	if err := b.Release(); err != nil {
		t.Fatal(err)
	}
	if err := b.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}
	if _, err := b.Transcribe(context.Background(), audioFile(t)); !apperrors.HasCode(err, apperrors.ErrCodeEngineFailure) {
		t.Errorf("expected ENGINE_FAILURE after release, got %v", err)
	}
}

func TestParseText(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"json", `{"text":"hi"}`, "hi", false},
		{"json empty text", `{"text":""}`, "", false},
		{"plain", "hi there", "hi there", false},
		{"invalid utf8", "\xff\xfe", "", true},
		{"blank", "  ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseText([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
