// Package models defines core data structures for uploaded quotes and their summaries.
package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// UploadedDocument is a quote file received for one processing cycle.
type UploadedDocument struct {
	Filename  string `json:"filename"`
	Extension string `json:"extension"`
	Content   []byte `json:"-"`
}

// NewUploadedDocument builds a document and derives its extension from filename
// (lower-case, without the leading dot).
func NewUploadedDocument(filename string, content []byte) UploadedDocument {
	return UploadedDocument{
		Filename:  filepath.Base(filename),
		Extension: strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		Content:   content,
	}
}

// Validate rejects documents with no name or no content.
func (d UploadedDocument) Validate() error {
	if d.Filename == "" || d.Filename == "." {
		return fmt.Errorf("filename cannot be empty")
	}
	if len(d.Content) == 0 {
		return fmt.Errorf("file %q is empty", d.Filename)
	}
	return nil
}

// QuoteSummary is a generated benchmarking summary.
type QuoteSummary struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Mode      Mode      `json:"mode"`
	Text      string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
