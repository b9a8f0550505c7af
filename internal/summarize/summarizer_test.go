package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hyperjump/quotebench/internal/models"
)

func TestOffline_inputIndependent(t *testing.T) {
	s := NewOffline()
	a, err := s.Summarize(context.Background(), "Quote: replace roof tiles")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Summarize(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if a != b || a != MockSummary {
		t.Errorf("offline summaries differ: %q vs %q", a, b)
	}
	for _, part := range []string{"Labour: $1,000", "Risk Rating", "Final Recommendation: Approved", "mock summary"} {
		if !strings.Contains(a, part) {
			t.Errorf("mock summary missing %q", part)
		}
	}
}

func TestRenderPrompt(t *testing.T) {
	p := RenderPrompt("Labour 10h @ $80")
	if !strings.HasSuffix(p, "Quote:\nLabour 10h @ $80\n") {
		t.Errorf("quote not appended: %q", p)
	}
	for _, part := range []string{"plain English summary", "Labour and material cost checks", "severity and likelihood", "Approved / Request More Info / Declined"} {
		if !strings.Contains(p, part) {
			t.Errorf("prompt missing %q", part)
		}
	}
}

type completionRequest struct {
	Model       string  `json:"model"`
	Temperature *float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionServer(t *testing.T, status int, body string, got *completionRequest, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func completionBody(content string) string {
	msg, _ := json.Marshal(content)
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"gpt-3.5-turbo",` +
		`"choices":[{"index":0,"finish_reason":"stop","logprobs":null,"message":{"role":"assistant","refusal":null,"content":` + string(msg) + `}}],` +
		`"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`
}

func TestOpenAISummarizer_returnsTrimmedContent(t *testing.T) {
	var req completionRequest
	var calls int32
	srv := completionServer(t, http.StatusOK, completionBody("\n  1. Roof repair.\n4. Approved  \n"), &req, &calls)

	s := NewOpenAISummarizer(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1/"}, nil)
	got, err := s.Summarize(context.Background(), "Replace 20 roof tiles")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got != "1. Roof repair.\n4. Approved" {
		t.Errorf("got %q", got)
	}
	if req.Model != "gpt-3.5-turbo" {
		t.Errorf("model = %q", req.Model)
	}
	if req.Temperature == nil || *req.Temperature != 0.3 {
		t.Errorf("temperature = %v", req.Temperature)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", req.Messages)
	}
	if req.Messages[0].Content != RenderPrompt("Replace 20 roof tiles") {
		t.Errorf("prompt = %q", req.Messages[0].Content)
	}
	if calls != 1 {
		t.Errorf("calls = %d", calls)
	}
}

func TestOpenAISummarizer_configuredModel(t *testing.T) {
	var req completionRequest
	var calls int32
	srv := completionServer(t, http.StatusOK, completionBody("ok"), &req, &calls)

	s := NewOpenAISummarizer(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1/", Model: "gpt-4o-mini", Temperature: temperature(0.5)}, nil)
	if _, err := s.Summarize(context.Background(), "x"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if req.Model != "gpt-4o-mini" || req.Temperature == nil || *req.Temperature != 0.5 {
		t.Errorf("request = %+v", req)
	}
}

func TestOpenAISummarizer_zeroTemperatureIsSent(t *testing.T) {
	var req completionRequest
	var calls int32
	srv := completionServer(t, http.StatusOK, completionBody("ok"), &req, &calls)

	s := NewOpenAISummarizer(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1/", Temperature: temperature(0)}, nil)
	if _, err := s.Summarize(context.Background(), "x"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if req.Temperature == nil || *req.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", req.Temperature)
	}
}

func temperature(v float64) *float64 {
	return &v
}

func TestOpenAISummarizer_noRetryOnFailure(t *testing.T) {
	var calls int32
	srv := completionServer(t, http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, nil, &calls)

	s := NewOpenAISummarizer(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1/"}, nil)
	if _, err := s.Summarize(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", calls)
	}
}

func TestOpenAISummarizer_noChoices(t *testing.T) {
	var calls int32
	body := `{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"gpt-3.5-turbo","choices":[]}`
	srv := completionServer(t, http.StatusOK, body, nil, &calls)

	s := NewOpenAISummarizer(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1/"}, nil)
	_, err := s.Summarize(context.Background(), "x")
	if !errors.Is(err, ErrNoChoices) {
		t.Errorf("err = %v, want ErrNoChoices", err)
	}
}

type stubSummarizer struct{ out string }

func (s stubSummarizer) Summarize(context.Context, string) (string, error) { return s.out, nil }

func TestRegistry_ForMode(t *testing.T) {
	r := NewRegistry(NewOffline(), stubSummarizer{out: "remote"})
	s, err := r.ForMode(models.ModeRemote)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Summarize(context.Background(), ""); got != "remote" {
		t.Errorf("remote summarizer = %q", got)
	}
	s, err = r.ForMode(models.ModeOffline)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Summarize(context.Background(), ""); got != MockSummary {
		t.Errorf("offline summarizer = %q", got)
	}

	offlineOnly := NewRegistry(NewOffline(), nil)
	if _, err := offlineOnly.ForMode(models.ModeRemote); !errors.Is(err, ErrModeUnavailable) {
		t.Errorf("err = %v, want ErrModeUnavailable", err)
	}
}
