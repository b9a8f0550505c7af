// Package extract provides text extraction from contractor quote documents.
package extract

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// UnsupportedText is the text carried by a Result whose type is not supported.
const UnsupportedText = "Unsupported file type"

// ErrUnsupportedFileType is returned by callers that refuse to go on with an unsupported Result.
var ErrUnsupportedFileType = errors.New(strings.ToLower(UnsupportedText))

// FileType is one of the document types the Extractor understands.
type FileType int

const (
	TypeUnknown FileType = iota
	TypePDF
	TypeDOCX
	TypeXLSX
	TypeHTML
)

// SupportedExtensions lists the accepted file extensions, without the leading dot.
var SupportedExtensions = []string{"pdf", "docx", "xlsx", "html"}

// ParseFileType maps a file extension (with or without the leading dot, any case) to a FileType.
// Unrecognised extensions map to TypeUnknown.
func ParseFileType(ext string) FileType {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".") {
	case "pdf":
		return TypePDF
	case "docx":
		return TypeDOCX
	case "xlsx":
		return TypeXLSX
	case "html":
		return TypeHTML
	default:
		return TypeUnknown
	}
}

func (t FileType) String() string {
	switch t {
	case TypePDF:
		return "pdf"
	case TypeDOCX:
		return "docx"
	case TypeXLSX:
		return "xlsx"
	case TypeHTML:
		return "html"
	default:
		return "unknown"
	}
}

// Result is the outcome of an extraction. An unsupported type is a normal Result,
// not an error, so callers must check Supported before using Text.
type Result struct {
	Type FileType
	Text string
}

// Supported reports whether the document type was recognised.
func (r Result) Supported() bool {
	return r.Type != TypeUnknown
}

// Extractor extracts plain text from quote documents.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and extracts its text as the given type.
// ext is the declared type of the document; the file name is not consulted.
func (e *Extractor) Extract(path, ext string) (Result, error) {
	ft := ParseFileType(ext)
	if ft == TypeUnknown {
		return unsupported(), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read file: %w", err)
	}
	return e.extract(content, ft)
}

// ExtractBytes extracts text from content based on the given extension.
func (e *Extractor) ExtractBytes(content []byte, ext string) (Result, error) {
	return e.extract(content, ParseFileType(ext))
}

func (e *Extractor) extract(content []byte, ft FileType) (Result, error) {
	var (
		text string
		err  error
	)
	switch ft {
	case TypePDF:
		text, err = extractPDF(content)
	case TypeDOCX:
		text, err = extractDOCX(content)
	case TypeXLSX:
		text, err = extractExcel(content)
	case TypeHTML:
		text, err = extractHTML(content)
	default:
		return unsupported(), nil
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Type: ft, Text: text}, nil
}

func unsupported() Result {
	return Result{Type: TypeUnknown, Text: UnsupportedText}
}
