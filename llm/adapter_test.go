package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type mockDialect struct {
	baseURL  string
	buildErr error
	parseErr error
}

func (d *mockDialect) Name() string           { return "mock" }
func (d *mockDialect) DefaultBaseURL() string { return d.baseURL }
func (d *mockDialect) ChatPath() string       { return "/chat" }

func (d *mockDialect) BuildRequest(req CompletionRequest) (any, error) {
	if d.buildErr != nil {
		return nil, d.buildErr
	}
	return map[string]any{
		"model":       req.Model,
		"messages":    req.AllMessages(),
		"temperature": req.Temperature,
	}, nil
}

func (d *mockDialect) ParseResponse(body []byte) (*CompletionResponse, error) {
	if d.parseErr != nil {
		return nil, d.parseErr
	}
	var raw struct {
		Content string `json:"content"`
		Model   string `json:"model"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return &CompletionResponse{Content: raw.Content, Model: raw.Model}, nil
}

func TestNewWithDialect_Nil(t *testing.T) {
	if _, err := NewWithDialect(nil, Config{}); !errors.Is(err, ErrNoDialect) {
		t.Errorf("expected ErrNoDialect, got %v", err)
	}
}

func TestNew_UnknownDialect(t *testing.T) {
	_, err := New(Config{Dialect: "does-not-exist"})
	if err == nil || !strings.Contains(err.Error(), "unknown dialect") {
		t.Errorf("expected unknown dialect error, got %v", err)
	}
}

func TestRegisterDialect(t *testing.T) {
	RegisterDialect("mock-registered", &mockDialect{})
	d, err := GetDialect("mock-registered")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name() != "mock" {
		t.Errorf("expected mock dialect, got %q", d.Name())
	}
	found := false
	for _, name := range Dialects() {
		if name == "mock-registered" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected registered dialect in %v", Dialects())
	}
}

func TestAdapter_Execute(t *testing.T) {
	var body map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Errorf("expected /chat, got %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"content":"cleaned","model":"m1"}`))
	}))
	defer srv.Close()

	a, err := NewWithDialect(&mockDialect{baseURL: srv.URL}, Config{Model: "m1", Temperature: 0.2, APIKey: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if a.Name() != "mock-llm" {
		t.Errorf("expected default name mock-llm, got %q", a.Name())
	}
	text, err := Complete(context.Background(), a, "be terse", "raw text")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "cleaned" {
		t.Errorf("expected 'cleaned', got %q", text)
	}
	if auth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", auth)
	}
	if body["model"] != "m1" || body["temperature"] != 0.2 {
		t.Errorf("expected adapter defaults in request, got %v", body)
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %v", body["messages"])
	}
	if first, _ := msgs[0].(map[string]any); first["role"] != "system" {
		t.Errorf("expected system message first, got %v", msgs[0])
	}
}

func TestAdapter_Execute_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		dialect *mockDialect
		want    string
	}{
		{"build", &mockDialect{baseURL: srv.URL, buildErr: errors.New("nope")}, "build request"},
		{"http", &mockDialect{baseURL: srv.URL}, "execute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewWithDialect(tt.dialect, Config{})
			if err != nil {
				t.Fatal(err)
			}
			_, err = a.Execute(context.Background(), CompletionRequest{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q error, got %v", tt.want, err)
			}
		})
	}
}

func TestAdapter_ExplicitBaseURLWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":"ok"}`))
	}))
	defer srv.Close()

	a, err := NewWithDialect(&mockDialect{baseURL: "http://127.0.0.1:1"}, Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := a.Execute(context.Background(), CompletionRequest{Messages: []Message{{Role: "user", Content: "x"}}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("expected ok, got %q", resp.Content)
	}
}

func TestAllMessages(t *testing.T) {
	req := CompletionRequest{Messages: []Message{{Role: "user", Content: "u"}}}
	if got := req.AllMessages(); len(got) != 1 {
		t.Errorf("expected no system message, got %v", got)
	}
	req.SystemPrompt = "s"
	got := req.AllMessages()
	if len(got) != 2 || got[0].Role != "system" || got[1].Content != "u" {
		t.Errorf("unexpected messages %v", got)
	}
}
