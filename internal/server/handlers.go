package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/quotebench/internal/extract"
	"github.com/hyperjump/quotebench/internal/models"
	"github.com/hyperjump/quotebench/internal/pipeline"
	"github.com/hyperjump/quotebench/internal/summarize"
	"go.uber.org/zap"
)

// DownloadFilename is the name offered for a downloaded summary.
const DownloadFilename = "benchmarking_summary.txt"

// multipartMemory is how much of a form is kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// readUpload parses the multipart form and returns the uploaded document and
// the selected mode. The returned status is meaningful only when err is non-nil.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (models.UploadedDocument, models.Mode, int, error) {
	if s.config.MaxUploadBytes > 0 {
		if r.ContentLength > s.config.MaxUploadBytes {
			return models.UploadedDocument{}, 0, http.StatusRequestEntityTooLarge,
				fmt.Errorf("file exceeds the %d byte upload limit", s.config.MaxUploadBytes)
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return models.UploadedDocument{}, 0, http.StatusRequestEntityTooLarge,
				fmt.Errorf("file exceeds the %d byte upload limit", tooLarge.Limit)
		}
		return models.UploadedDocument{}, 0, http.StatusBadRequest, errors.New("invalid multipart form")
	}

	mode := models.ModeRemote
	if raw := r.FormValue("mode"); raw != "" {
		m, err := models.ParseMode(raw)
		if err != nil {
			return models.UploadedDocument{}, 0, http.StatusBadRequest, err
		}
		mode = m
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return models.UploadedDocument{}, 0, http.StatusBadRequest, errors.New("file is required")
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return models.UploadedDocument{}, 0, http.StatusBadRequest, errors.New("could not read uploaded file")
	}
	return models.NewUploadedDocument(header.Filename, content), mode, 0, nil
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, pipeline.ErrNoText), errors.Is(err, pipeline.ErrExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, summarize.ErrModeUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, pipeline.ErrSummarization):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// summarize runs the pipeline for one request and stores the result.
func (s *Server) summarize(w http.ResponseWriter, r *http.Request) (*models.QuoteSummary, models.Mode, int, error) {
	doc, mode, status, err := s.readUpload(w, r)
	if err != nil {
		return nil, mode, status, err
	}
	s.logger.Debug("summarize request",
		zap.String("filename", doc.Filename),
		zap.String("mode", mode.String()),
		zap.Int("bytes", len(doc.Content)),
	)
	summary, err := s.processor.Process(r.Context(), doc, mode)
	if err != nil {
		return nil, mode, statusFor(err), err
	}
	s.results.Put(*summary)
	return summary, mode, http.StatusOK, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, http.StatusOK, pageData{Mode: models.ModeRemote})
}

func (s *Server) handleSummarizeForm(w http.ResponseWriter, r *http.Request) {
	summary, mode, status, err := s.summarize(w, r)
	if err != nil {
		s.renderPage(w, status, pageData{Mode: mode, Error: err.Error()})
		return
	}
	s.renderPage(w, http.StatusOK, pageData{Mode: mode, Summary: summary})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.results.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "summary not found or expired", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+DownloadFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, summary.Text)
}

func (s *Server) handleSummarizeAPI(w http.ResponseWriter, r *http.Request) {
	summary, _, status, err := s.summarize(w, r)
	if err != nil {
		s.respondError(w, status, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, summary)
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.results.Get(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "summary not found")
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
