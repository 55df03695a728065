package output

import (
	"encoding/csv"
	"io"

	"github.com/rileyhilliard/lsview/internal/view"
)

// CSVRenderer writes one header line of export titles and one line per row.
// Group columns come first.
type CSVRenderer struct {
	// Comma separates fields; ';' by default.
	Comma rune
}

// NewCSVRenderer creates a CSV renderer with ';' as separator.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{Comma: ';'}
}

// Name returns "csv".
func (r *CSVRenderer) Name() string { return FormatCSV }

// Render implements Renderer.
func (r *CSVRenderer) Render(w io.Writer, out *view.Output) error {
	cells := append(append([]*view.Cell(nil), out.GroupCells...), out.Cells...)

	cw := csv.NewWriter(w)
	cw.Comma = r.Comma

	header := make([]string, len(cells))
	for i, c := range cells {
		header[i] = c.ExportTitle()
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range out.Rows {
		painted, err := paintRow(cells, row, textMode)
		if err != nil {
			return err
		}
		record := make([]string, len(painted))
		for i, p := range painted {
			record[i] = p.Content
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
