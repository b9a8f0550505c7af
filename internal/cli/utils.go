// Package cli provides CLI utilities for quotebench.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/quotebench/internal/models"
)

// SummaryFileSuffix is appended to a quote's base name when a summary is written next to it.
const SummaryFileSuffix = ".benchmarking_summary.txt"

// OutputFormat is the format for summary output.
type OutputFormat string

const (
	// OutputText is the summary text as-is (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a -output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", s)
}

// WriteSummary writes summary to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSummary(w io.Writer, summary *models.QuoteSummary, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	default:
		text := summary.Text
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		_, err := io.WriteString(w, text)
		return err
	}
}

// WriteSummaryFile writes the summary text verbatim to path.
func WriteSummaryFile(path string, summary *models.QuoteSummary) error {
	if err := os.WriteFile(path, []byte(summary.Text), 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// SummaryUpToDate reports whether dest exists and is not older than source.
func SummaryUpToDate(source, dest string) bool {
	src, err := os.Stat(source)
	if err != nil {
		return false
	}
	out, err := os.Stat(dest)
	if err != nil {
		return false
	}
	return !out.ModTime().Before(src.ModTime())
}

// SummaryPath returns where the summary of source is written. An empty outputDir
// places it next to source.
func SummaryPath(source, outputDir string) string {
	base := filepath.Base(source)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + SummaryFileSuffix
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	return filepath.Join(outputDir, name)
}
