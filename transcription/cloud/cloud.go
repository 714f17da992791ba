package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/httpclient"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/resilience"
	"github.com/kbukum/scribe/security"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/util"
	"github.com/kbukum/scribe/validation"
)

// Name is the backend name reported in results and logs.
const Name = "cloud"

const (
	defaultModel   = "whisper-1"
	defaultTimeout = 120 * time.Second
)

var errReleased = errors.New("backend released")

// Config configures a cloud backend.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration
	// TLS configures HTTPS for self-hosted endpoints.
	TLS *security.TLSConfig
	// Retry overrides the default retry policy.
	Retry   *resilience.RetryPolicy
	Logger  *logger.Logger
	Metrics *observability.Metrics
}

// Backend posts audio to a Whisper-compatible HTTP API.
type Backend struct {
	mu       sync.Mutex
	client   *httpclient.Client
	endpoint string
	model    string
	language string
	prompt   string
	policy   resilience.RetryPolicy
	released bool
	log      *logger.Logger
	metrics  *observability.Metrics
}

var _ transcription.Backend = (*Backend)(nil)

// New validates credentials and endpoint and builds the HTTP client.
func New(cfg Config) (*Backend, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apperrors.EmptyCredential("the cloud transcription API")
	}
	if !validation.IsHTTPURL(cfg.Endpoint) {
		return nil, apperrors.InvalidEndpoint(cfg.Endpoint)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.APIKey),
		Headers: map[string]string{"Accept": "application/json"},
		TLS:     cfg.TLS,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	b := &Backend{
		client:   client,
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		log:      cfg.Logger.WithComponent("backend.cloud"),
		metrics:  cfg.Metrics,
	}
	b.policy = resilience.DefaultRetryPolicy()
	if cfg.Retry != nil {
		b.policy = *cfg.Retry
	}
	return b, nil
}

// Name returns "cloud".
func (b *Backend) Name() string { return Name }

// Configure sets language and prompt for subsequent calls.
func (b *Backend) Configure(language, prompt string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.language = strings.TrimSpace(language)
	b.prompt = prompt
}

// Transcribe uploads the file and returns the text, retrying transient
// failures. The context is honored between attempts; an in-flight request is
// bounded by the client timeout.
func (b *Backend) Transcribe(ctx context.Context, audioPath string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.released {
		return "", apperrors.EngineFailure(errReleased)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(audioPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperrors.FileNotFound(audioPath)
		}
		return "", apperrors.Internal(fmt.Errorf("read audio: %w", err))
	}
	body := b.form(filepath.Base(audioPath), data)

	log := b.log.WithContext(ctx)
	policy := b.policy
	userHook := policy.OnRetry
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn("cloud transcription attempt failed, retrying", logger.Fields(
			logger.FieldAttempt, attempt,
			logger.FieldDelay, delay.Milliseconds(),
			logger.FieldCode, string(apperrors.CodeOf(err)),
		))
		if b.metrics != nil {
			b.metrics.RecordRetry(ctx, Name)
		}
		if userHook != nil {
			userHook(attempt, err, delay)
		}
	}

	return resilience.Retry(ctx, policy, func(ctx context.Context) (string, error) {
		return b.attempt(context.WithoutCancel(ctx), body)
	})
}

func (b *Backend) form(fileName string, data []byte) *httpclient.MultipartBody {
	fields := map[string]string{"model": b.model}
	if !transcription.IsAutoLanguage(b.language) {
		fields["language"] = b.language
	}
	if b.prompt != "" {
		fields["prompt"] = b.prompt
	}
	return &httpclient.MultipartBody{
		Fields: fields,
		Files:  []httpclient.FileField{{FieldName: "file", FileName: fileName, Data: data}},
	}
}

func (b *Backend) attempt(ctx context.Context, body *httpclient.MultipartBody) (string, error) {
	resp, err := b.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   b.endpoint,
		Body:   body,
	})
	if resp == nil {
		if httpclient.IsCanceled(err) {
			return "", ctx.Err()
		}
		return "", apperrors.NetworkError(err)
	}
	return parseResponse(resp.StatusCode, resp.Body)
}

// parseResponse maps an HTTP status and body to text or a taxonomy error.
func parseResponse(status int, body []byte) (string, error) {
	switch status {
	case http.StatusOK:
		return parseText(body)
	case http.StatusUnauthorized:
		return "", apperrors.AuthenticationFailed()
	case http.StatusTooManyRequests:
		return "", apperrors.RateLimited()
	case http.StatusBadRequest:
		return "", apperrors.InvalidAudioFormat(snippet(body))
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "", apperrors.ServiceUnavailable(status)
	default:
		return "", apperrors.InvalidResponse(fmt.Sprintf("unexpected status %d", status))
	}
}

type transcriptionResponse struct {
	Text *string `json:"text"`
}

// parseText accepts {"text": ...} JSON or a non-empty plain text body.
func parseText(body []byte) (string, error) {
	var r transcriptionResponse
	if err := json.Unmarshal(body, &r); err == nil {
		if r.Text == nil {
			return "", apperrors.InvalidResponse("missing text field")
		}
		return strings.TrimSpace(*r.Text), nil
	}
	text := strings.TrimSpace(string(body))
	if text == "" || !utf8.ValidString(text) {
		return "", apperrors.InvalidResponse("body is neither JSON nor text")
	}
	return text, nil
}

func snippet(body []byte) string {
	return util.Truncate(strings.TrimSpace(string(body)), 200)
}

// Release closes idle connections. Later calls are no-ops.
func (b *Backend) Release() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return nil
	}
	b.released = true
	b.client.Close()
	return nil
}
