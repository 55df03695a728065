package output

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/view"
)

var stripTags = bluemonday.StrictPolicy()

type cellMode int

const (
	htmlMode  cellMode = iota // painter HTML as is
	textMode                  // tags stripped, entities decoded
	printMode                 // like textMode, unprintable cells blank
)

type painted struct {
	Class   string
	Content string
}

type paintedGroup struct {
	Header []painted
	Rows   [][]painted
}

// paintGroups renders every group header and row of the output.
func paintGroups(out *view.Output, cells []*view.Cell, mode cellMode) ([]paintedGroup, error) {
	groups := make([]paintedGroup, 0, len(out.Groups))
	for _, g := range out.Groups {
		pg := paintedGroup{}
		if len(out.GroupCells) > 0 && len(g.Rows) > 0 {
			header, err := paintRow(out.GroupCells, g.Rows[0], mode)
			if err != nil {
				return nil, err
			}
			pg.Header = header
		}
		for _, row := range g.Rows {
			pr, err := paintRow(cells, row, mode)
			if err != nil {
				return nil, err
			}
			pg.Rows = append(pg.Rows, pr)
		}
		groups = append(groups, pg)
	}
	return groups, nil
}

func paintRow(cells []*view.Cell, row registry.Row, mode cellMode) ([]painted, error) {
	out := make([]painted, len(cells))
	for i, c := range cells {
		var class, content string
		var err error
		switch mode {
		case printMode:
			class, content, err = c.RenderForPDF(row)
		case textMode:
			class, content, err = c.Render(row)
			content = plainText(content)
		default:
			class, content, err = c.Render(row)
		}
		if err != nil {
			return nil, err
		}
		out[i] = painted{Class: class, Content: content}
	}
	return out, nil
}

func plainText(content string) string {
	if !strings.ContainsAny(content, "<&") {
		return content
	}
	return html.UnescapeString(strings.TrimSpace(stripTags.Sanitize(content)))
}

// printableCells drops the cells left out of printed output.
func printableCells(cells []*view.Cell) []*view.Cell {
	out := make([]*view.Cell, 0, len(cells))
	for _, c := range cells {
		if c.Printable() != registry.NotPrinted {
			out = append(out, c)
		}
	}
	return out
}

func titles(cells []*view.Cell, short bool) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Title(short)
	}
	return out
}

func joinContents(cells []painted, sep string) string {
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		if c.Content != "" {
			parts = append(parts, c.Content)
		}
	}
	return strings.Join(parts, sep)
}
