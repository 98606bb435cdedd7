package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// columnGap separates adjacent columns.
const columnGap = 2

// Table aligns rows of cells into columns. Cells may carry ANSI styling;
// widths are measured on visible characters. The last cell of a row is never
// padded.
type Table struct {
	// Indent is written before every row.
	Indent string

	rows   [][]string
	widths []int
}

// Add appends a row. Rows may have different lengths.
func (t *Table) Add(cells ...string) {
	for i, cell := range cells {
		w := lipgloss.Width(cell)
		if i == len(t.widths) {
			t.widths = append(t.widths, w)
		} else if w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Fprint writes the aligned rows to w.
func (t *Table) Fprint(w io.Writer) error {
	var sb strings.Builder
	for _, row := range t.rows {
		sb.WriteString(t.Indent)
		for i, cell := range row {
			sb.WriteString(cell)
			if i == len(row)-1 {
				break
			}
			sb.WriteString(strings.Repeat(" ", t.widths[i]-lipgloss.Width(cell)+columnGap))
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
