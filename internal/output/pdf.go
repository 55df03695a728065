package output

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rileyhilliard/lsview/internal/view"
)

// PDFRenderer writes the printable rendition of a view as plain text, to be
// piped into a document formatter. Painters marked not printed are left
// out; there is no color, markup or link.
type PDFRenderer struct{}

// NewPDFRenderer creates a printable text renderer.
func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

// Name returns "pdf".
func (r *PDFRenderer) Name() string { return FormatPDF }

// Render implements Renderer.
func (r *PDFRenderer) Render(w io.Writer, out *view.Output) error {
	cells := printableCells(out.Cells)
	groupCells := printableCells(out.GroupCells)

	var b strings.Builder
	b.WriteString(out.View.DisplayTitle())
	b.WriteString("\n\n")

	for i, g := range out.Groups {
		if i > 0 {
			b.WriteString("\n")
		}
		if len(groupCells) > 0 && len(g.Rows) > 0 {
			header, err := paintRow(groupCells, g.Rows[0], printMode)
			if err != nil {
				return err
			}
			b.WriteString(joinContents(header, " "))
			b.WriteString("\n")
		}

		t := table.New().
			Border(lipgloss.ASCIIBorder()).
			BorderColumn(false).
			BorderLeft(false).
			BorderRight(false).
			Headers(titles(cells, false)...).
			StyleFunc(func(_, _ int) lipgloss.Style { return lipgloss.NewStyle().PaddingRight(2) })
		for _, row := range g.Rows {
			painted, err := paintRow(cells, row, printMode)
			if err != nil {
				return err
			}
			values := make([]string, len(painted))
			for i, p := range painted {
				values[i] = p.Content
			}
			t.Row(values...)
		}
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	for _, n := range Notices(out) {
		b.WriteString("\n")
		b.WriteString(n)
	}
	if len(Notices(out)) > 0 {
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
