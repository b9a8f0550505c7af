package extract

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// baselineTolerance is how far apart, in points, two glyphs may sit vertically
// and still belong to the same line.
const baselineTolerance = 1.0

// extractPDF returns the text of every page that has any, one text line per
// line. Pages without a content stream or without text (scanned images) are
// skipped.
func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var pages []string
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() || page.V.Key("Contents").IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		if text == "" {
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

// pageText walks the page's glyphs in content order and starts a new line
// whenever the baseline moves. Blank lines are dropped.
func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed content stream: %v", r)
		}
	}()

	var lines []string
	var line strings.Builder
	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			lines = append(lines, s)
		}
		line.Reset()
	}
	var y float64
	for i, t := range page.Content().Text {
		if i > 0 && math.Abs(t.Y-y) > baselineTolerance {
			flush()
		}
		y = t.Y
		if t.S == "\n" || t.S == "\r" {
			continue
		}
		line.WriteString(t.S)
	}
	flush()
	return strings.Join(lines, "\n"), nil
}
