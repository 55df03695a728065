package output

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rileyhilliard/lsview/internal/ui"
	"github.com/rileyhilliard/lsview/internal/view"
)

// TextRenderer draws views as terminal tables. Views with the boxed layout
// get one box per row.
type TextRenderer struct {
	styled bool
	width  int
}

// NewTextRenderer creates a text renderer. Without styling, painter classes
// are ignored and borders are plain ASCII.
func NewTextRenderer(styled bool, width int) *TextRenderer {
	return &TextRenderer{styled: styled, width: width}
}

// Name returns "text".
func (r *TextRenderer) Name() string { return FormatText }

// Render implements Renderer.
func (r *TextRenderer) Render(w io.Writer, out *view.Output) error {
	groups, err := paintGroups(out, out.Cells, textMode)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(r.style(ui.HeaderStyle()).Render(out.View.DisplayTitle()))
	b.WriteString("\n")

	if len(out.Rows) == 0 {
		b.WriteString(r.style(ui.MutedStyle()).Render("No rows"))
		b.WriteString("\n")
	}

	headers := r.headers(out)
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		if len(g.Header) > 0 {
			b.WriteString(r.style(ui.HeaderStyle()).Render(r.join(g.Header, " ")))
			b.WriteString("\n")
		}
		if out.View.Layout == "boxed" {
			for _, row := range g.Rows {
				b.WriteString(r.box(headers, row))
				b.WriteString("\n")
			}
			continue
		}
		b.WriteString(r.table(headers, g.Rows))
		b.WriteString("\n")
	}

	for _, n := range Notices(out) {
		b.WriteString(r.style(ui.WarningStyle()).Render(n))
		b.WriteString("\n")
	}
	_, err = io.WriteString(w, b.String())
	return err
}

func (r *TextRenderer) headers(out *view.Output) []string {
	headers := titles(out.Cells, true)
	for i, c := range out.Cells {
		if ind := ui.SortIndicator(c.SortOrder(out.Sort)); ind != "" {
			headers[i] += " " + ind
		}
	}
	return headers
}

func (r *TextRenderer) table(headers []string, rows [][]painted) string {
	t := table.New().
		Border(r.border()).
		BorderStyle(r.style(ui.MutedStyle())).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Inherit(r.style(ui.HeaderStyle()))
			}
			return s
		})
	if r.width > 0 {
		t = t.Width(r.width)
	}
	for _, row := range rows {
		t.Row(r.cells(row)...)
	}
	return t.Render()
}

func (r *TextRenderer) box(headers []string, row []painted) string {
	t := table.New().
		Border(r.border()).
		BorderStyle(r.style(ui.MutedStyle())).
		StyleFunc(func(_, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if col == 0 {
				return s.Inherit(r.style(ui.HeaderStyle()))
			}
			return s
		})
	cells := r.cells(row)
	for i, h := range headers {
		t.Row(h, cells[i])
	}
	return t.Render()
}

func (r *TextRenderer) cells(row []painted) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = r.paint(c)
	}
	return out
}

func (r *TextRenderer) join(cells []painted, sep string) string {
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		if c.Content != "" {
			parts = append(parts, r.paint(c))
		}
	}
	return strings.Join(parts, sep)
}

func (r *TextRenderer) paint(c painted) string {
	if !r.styled || c.Class == "" {
		return c.Content
	}
	return ui.ClassStyle(c.Class).Render(c.Content)
}

func (r *TextRenderer) style(s lipgloss.Style) lipgloss.Style {
	if !r.styled {
		return lipgloss.NewStyle()
	}
	return s
}

func (r *TextRenderer) border() lipgloss.Border {
	if r.styled {
		return lipgloss.RoundedBorder()
	}
	return lipgloss.ASCIIBorder()
}
