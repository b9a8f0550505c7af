// Package pipeline runs one quote through staging, extraction and summarization.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/quotebench/internal/extract"
	"github.com/hyperjump/quotebench/internal/models"
	"github.com/hyperjump/quotebench/internal/staging"
	"github.com/hyperjump/quotebench/internal/summarize"
	"github.com/hyperjump/quotebench/pkg/utils"
	"go.uber.org/zap"
)

var (
	// ErrNoText is returned when a supported document yields no text.
	ErrNoText = errors.New("could not extract any text from the file")
	// ErrExtraction wraps failures of the document parsers.
	ErrExtraction = errors.New("extraction failed")
	// ErrSummarization wraps failures of the summarizer.
	ErrSummarization = errors.New("summarization failed")
)

// TextExtractor reads a staged file as the declared type.
type TextExtractor interface {
	Extract(path, ext string) (extract.Result, error)
}

// SummarizerSource resolves the summarizer for a mode.
type SummarizerSource interface {
	ForMode(mode models.Mode) (summarize.Summarizer, error)
}

// Pipeline turns uploaded documents into quote summaries.
type Pipeline struct {
	staging     *staging.Area
	extractor   TextExtractor
	summarizers SummarizerSource
	logger      *zap.Logger
	now         func() time.Time
}

// New returns a pipeline. A nil logger discards log output.
func New(area *staging.Area, extractor TextExtractor, summarizers SummarizerSource, logger *zap.Logger) *Pipeline {
	if area == nil {
		area = &staging.Area{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		staging:     area,
		extractor:   extractor,
		summarizers: summarizers,
		logger:      logger,
		now:         time.Now,
	}
}

// Process stages doc, extracts its text and summarizes it in the given mode.
// The staged copy is gone by the time extraction returns, whatever the outcome.
func (p *Pipeline) Process(ctx context.Context, doc models.UploadedDocument, mode models.Mode) (*models.QuoteSummary, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	log := p.logger.With(zap.String("filename", doc.Filename), zap.String("mode", mode.String()))

	var result extract.Result
	err := p.staging.With(doc.Extension, doc.Content, func(path string) error {
		var err error
		result, err = p.extractor.Extract(path, doc.Extension)
		return err
	})
	if err != nil {
		log.Warn("extraction failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrExtraction, doc.Filename, err)
	}
	if !result.Supported() {
		log.Info("unsupported file type", zap.String("extension", doc.Extension))
		return nil, fmt.Errorf("%w: %q", extract.ErrUnsupportedFileType, doc.Extension)
	}
	if strings.TrimSpace(result.Text) == "" {
		log.Info("no text extracted")
		return nil, ErrNoText
	}
	log.Debug("text extracted",
		zap.Int("chars", len(result.Text)),
		zap.String("preview", utils.Truncate(result.Text, 80)),
	)

	summarizer, err := p.summarizers.ForMode(mode)
	if err != nil {
		return nil, err
	}
	text, err := summarizer.Summarize(ctx, result.Text)
	if err != nil {
		log.Error("summarization failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSummarization, err)
	}
	log.Info("summary generated", zap.Int("chars", len(text)))

	return &models.QuoteSummary{
		ID:        uuid.NewString(),
		Filename:  doc.Filename,
		Mode:      mode,
		Text:      text,
		CreatedAt: p.now().UTC(),
	}, nil
}

// ProcessFile reads path from disk and processes it, taking the type from the file extension.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, mode models.Mode) (*models.QuoteSummary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return p.Process(ctx, models.NewUploadedDocument(path, content), mode)
}
