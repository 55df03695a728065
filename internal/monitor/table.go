package monitor

import (
	"fmt"
	"html"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/microcosm-cc/bluemonday"

	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/ui"
	"github.com/rileyhilliard/lsview/internal/view"
)

// maxColumnWidth caps table columns; longer content is truncated.
const maxColumnWidth = 48

// chromeHeight is the number of lines around the table: header, blank line
// and footer.
const chromeHeight = 4

var stripTags = bluemonday.StrictPolicy()

// setOutput replaces the displayed view and rebuilds the table, keeping the
// cursor position where possible.
func (m *Model) setOutput(out *view.Output) {
	m.out = out
	cursor := m.table.Cursor()

	headers, rows, aligned := tableContent(out)
	widths := ui.ColumnWidths(headers, rows, maxColumnWidth)
	cols := make([]ui.TableColumn, len(headers))
	for i, h := range headers {
		cols[i] = ui.TableColumn{Title: h, Width: widths[i]}
	}
	trows := make([]table.Row, len(rows))
	for i, r := range rows {
		trows[i] = table.Row(r)
	}

	m.table = ui.NewTable(cols, trows, m.tableHeight())
	m.table.SetWidth(m.width)
	m.rows = aligned
	if cursor >= len(trows) {
		cursor = len(trows) - 1
	}
	if cursor > 0 {
		m.table.SetCursor(cursor)
	}
	if m.mode == ViewDetail {
		m.updateDetail()
	}
}

func (m *Model) resize() {
	m.table.SetHeight(m.tableHeight())
	m.table.SetWidth(m.width)
	m.detail.Width = m.width
	m.detail.Height = m.tableHeight()
	if m.mode == ViewDetail {
		m.updateDetail()
	}
}

func (m Model) tableHeight() int {
	if h := m.height - chromeHeight; h > 1 {
		return h
	}
	return 1
}

// tableContent flattens the groups of a view into table rows. With group
// painters the first column holds the group header on the first row of
// each group. Headers carry the column number used by the sort keys.
func tableContent(out *view.Output) (headers []string, rows [][]string, aligned []registry.Row) {
	grouped := len(out.GroupCells) > 0
	if grouped {
		headers = append(headers, "")
	}
	for i, c := range out.Cells {
		h := fmt.Sprintf("%d:%s", i+1, c.Title(true))
		if ind := ui.SortIndicator(c.SortOrder(out.Sort)); ind != "" {
			h += " " + ind
		}
		headers = append(headers, h)
	}

	for _, g := range out.Groups {
		for i, row := range g.Rows {
			var line []string
			if grouped {
				label := ""
				if i == 0 {
					label = groupLabel(out.GroupCells, row)
				}
				line = append(line, label)
			}
			for _, c := range out.Cells {
				line = append(line, cellText(c, row))
			}
			rows = append(rows, line)
			aligned = append(aligned, row)
		}
	}
	return headers, rows, aligned
}

func groupLabel(cells []*view.Cell, row registry.Row) string {
	var parts []string
	for _, c := range cells {
		if text := cellText(c, row); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// cellText renders a cell as a single line of plain text. Failing painters
// show their error instead of breaking the screen.
func cellText(c *view.Cell, row registry.Row) string {
	_, content, err := c.Render(row)
	if err != nil {
		return "ERROR"
	}
	text := html.UnescapeString(strings.TrimSpace(stripTags.Sanitize(content)))
	return strings.Join(strings.Fields(text), " ")
}

// updateDetail fills the detail viewport with every cell of the selected
// row, titles first.
func (m *Model) updateDetail() {
	row, ok := m.SelectedRow()
	if !ok || m.out == nil {
		m.detail.SetContent("")
		return
	}

	var b strings.Builder
	cells := append(append([]*view.Cell(nil), m.out.GroupCells...), m.out.Cells...)
	for _, c := range cells {
		b.WriteString(LabelStyle.Render(c.Title(false)))
		b.WriteString("\n  ")
		b.WriteString(cellText(c, row))
		b.WriteString("\n")
	}
	if site := registry.ToString(row["site"]); site != "" {
		b.WriteString(LabelStyle.Render("Site"))
		b.WriteString("\n  ")
		b.WriteString(site)
		b.WriteString("\n")
	}
	m.detail.SetContent(DetailStyle.Render(strings.TrimRight(b.String(), "\n")))
	m.detail.GotoTop()
}
