package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/quotebench/internal/config"
	"github.com/hyperjump/quotebench/internal/extract"
	"github.com/hyperjump/quotebench/internal/models"
	"github.com/hyperjump/quotebench/internal/pipeline"
	"github.com/hyperjump/quotebench/internal/results"
	"github.com/hyperjump/quotebench/internal/staging"
	"github.com/hyperjump/quotebench/internal/summarize"
	"go.uber.org/zap"
)

type stubSummarizer struct {
	out   string
	err   error
	calls int
}

func (s *stubSummarizer) Summarize(context.Context, string) (string, error) {
	s.calls++
	return s.out, s.err
}

func newTestServer(t *testing.T, remote summarize.Summarizer, cfg *config.ServerConfig) (*Server, http.Handler) {
	t.Helper()
	area, err := staging.NewArea(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := pipeline.New(area, extract.NewExtractor(), summarize.NewRegistry(summarize.NewOffline(), remote), nil)
	if cfg == nil {
		cfg = &config.ServerConfig{Port: 8080, MaxUploadBytes: 1 << 20}
	}
	srv := NewServer(p, results.NewStore(16, time.Hour), cfg, zap.NewNop())
	return srv, srv.Router()
}

func uploadRequest(t *testing.T, target, mode, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if mode != "" {
		if err := mw.WriteField("mode", mode); err != nil {
			t.Fatal(err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, target, &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func decodeSummary(t *testing.T, w *httptest.ResponseRecorder) models.QuoteSummary {
	t.Helper()
	var out models.QuoteSummary
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestHandleIndex(t *testing.T) {
	_, h := newTestServer(t, nil, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Real (Remote)", "Test (Offline)", `accept=".pdf,.docx,.xlsx,.html"`, `value="remote" checked`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHandleSummarizeAPI_remote(t *testing.T) {
	remote := &stubSummarizer{out: "4. Final Recommendation: Request More Info"}
	_, h := newTestServer(t, remote, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, uploadRequest(t, "/api/v1/summaries", "remote", "quote.html", []byte("<p>Labour $1,000</p>")))
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d body %s", w.Code, w.Body.String())
	}
	out := decodeSummary(t, w)
	if out.Text != remote.out || out.Mode != models.ModeRemote || out.Filename != "quote.html" || out.ID == "" {
		t.Errorf("summary = %+v", out)
	}
}

func TestDownloadMatchesDisplayedSummary(t *testing.T) {
	remote := &stubSummarizer{out: "Line one\nLine two: $1,000 & <materials>\n\n*done*"}
	_, h := newTestServer(t, remote, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, uploadRequest(t, "/api/v1/summaries", "remote", "quote.html", []byte("<p>Labour</p>")))
	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d", w.Code)
	}
	created := decodeSummary(t, w)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summaries/"+created.ID+"/download", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("download status: got %d", w.Code)
	}
	if got := w.Body.String(); got != created.Text || got != remote.out {
		t.Errorf("download body %q differs from summary %q", got, created.Text)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="benchmarking_summary.txt"`) {
		t.Errorf("content-disposition = %q", cd)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content-type = %q", ct)
	}
}

func TestHandleSummarizeForm_offline(t *testing.T) {
	remote := &stubSummarizer{out: "remote"}
	srv, h := newTestServer(t, remote, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, uploadRequest(t, "/summaries", "offline", "quote.html", []byte("<p>Labour</p>")))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Mock Summary (Offline Mode)") {
		t.Error("page missing offline summary")
	}
	if !strings.Contains(body, `value="offline" checked`) {
		t.Error("selected mode not kept")
	}
	if !strings.Contains(body, "/download") {
		t.Error("page missing download link")
	}
	if remote.calls != 0 {
		t.Errorf("remote called %d times in offline mode", remote.calls)
	}
	if srv.results.Len() != 1 {
		t.Errorf("stored summaries = %d", srv.results.Len())
	}
}

func TestHandleSummarizeForm_noTextShowsError(t *testing.T) {
	remote := &stubSummarizer{out: "remote"}
	_, h := newTestServer(t, remote, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, uploadRequest(t, "/summaries", "remote", "blank.html", []byte("<html><body> </body></html>")))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "could not extract any text from the file") {
		t.Error("page missing extraction error")
	}
	if remote.calls != 0 {
		t.Errorf("summarizer called %d times", remote.calls)
	}
}

func TestHandleSummarizeAPI_errors(t *testing.T) {
	tests := []struct {
		name     string
		remote   summarize.Summarizer
		mode     string
		filename string
		content  []byte
		want     int
		wantMsg  string
	}{
		{"unsupported type", &stubSummarizer{}, "remote", "quote.txt", []byte("text"), http.StatusUnsupportedMediaType, "unsupported file type"},
		{"no text", &stubSummarizer{}, "remote", "quote.html", []byte("<p> </p>"), http.StatusUnprocessableEntity, "could not extract"},
		{"broken pdf", &stubSummarizer{}, "remote", "quote.pdf", []byte("nope"), http.StatusUnprocessableEntity, "extraction failed"},
		{"remote failure", &stubSummarizer{err: errors.New("401 Unauthorized")}, "remote", "quote.html", []byte("<p>x</p>"), http.StatusBadGateway, "401 Unauthorized"},
		{"remote unavailable", nil, "remote", "quote.html", []byte("<p>x</p>"), http.StatusServiceUnavailable, "not configured"},
		{"bad mode", &stubSummarizer{}, "fast", "quote.html", []byte("<p>x</p>"), http.StatusBadRequest, "unknown mode"},
		{"missing file", &stubSummarizer{}, "remote", "", nil, http.StatusBadRequest, "file is required"},
		{"empty file", &stubSummarizer{}, "remote", "quote.pdf", nil, http.StatusBadRequest, "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestServer(t, tt.remote, nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, uploadRequest(t, "/api/v1/summaries", tt.mode, tt.filename, tt.content))
			if w.Code != tt.want {
				t.Fatalf("status: got %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			var out map[string]string
			if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out["error"], tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", out["error"], tt.wantMsg)
			}
		})
	}
}

func TestHandleSummarizeAPI_tooLarge(t *testing.T) {
	_, h := newTestServer(t, &stubSummarizer{}, &config.ServerConfig{MaxUploadBytes: 64})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, uploadRequest(t, "/api/v1/summaries", "remote", "quote.html", bytes.Repeat([]byte("a"), 1024)))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status: got %d, want 413", w.Code)
	}
}

func TestHandleGetSummary(t *testing.T) {
	srv, h := newTestServer(t, nil, nil)
	srv.results.Put(models.QuoteSummary{ID: "abc", Text: "stored", Mode: models.ModeOffline})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/summaries/abc", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	if out := decodeSummary(t, w); out.Text != "stored" {
		t.Errorf("summary = %+v", out)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/summaries/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summaries/missing/download", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("download status: got %d, want 404", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	_, h := newTestServer(t, nil, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("health: %d %s", w.Code, w.Body.String())
	}
}
