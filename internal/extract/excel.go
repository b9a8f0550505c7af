package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"
)

// excelColumnGap separates the columns of a rendered sheet.
const excelColumnGap = "  "

// extractExcel renders the first worksheet as a fixed-width table. The first
// non-empty row is the header; blank rows are dropped.
func extractExcel(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	return renderTable(rows), nil
}

// renderTable right-aligns every column to its widest cell. Rows shorter than
// the widest row are padded with empty cells.
func renderTable(rows [][]string) string {
	var table [][]string
	cols := 0
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		table = append(table, row)
		if len(row) > cols {
			cols = len(row)
		}
	}
	if len(table) == 0 {
		return ""
	}

	widths := make([]int, cols)
	for _, row := range table {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	var line strings.Builder
	for r, row := range table {
		line.Reset()
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i > 0 {
				line.WriteString(excelColumnGap)
			}
			line.WriteString(runewidth.FillLeft(cell, widths[i]))
		}
		if r > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
	}
	return b.String()
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
