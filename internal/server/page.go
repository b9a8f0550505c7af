package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/hyperjump/quotebench/internal/extract"
	"github.com/hyperjump/quotebench/internal/models"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Mode    models.Mode
	Summary *models.QuoteSummary
	Error   string
}

// Modes is used by the template to render the mode selector.
func (pageData) Modes() []models.Mode {
	return models.Modes
}

// Accept is the file input's accept attribute.
func (pageData) Accept() string {
	exts := make([]string, len(extract.SupportedExtensions))
	for i, e := range extract.SupportedExtensions {
		exts[i] = "." + e
	}
	return strings.Join(exts, ",")
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("render page failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
