package view

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/registry"
)

// CellKind tells plain, joined and empty cells apart.
type CellKind int

const (
	// PlainCell paints the row itself.
	PlainCell CellKind = iota
	// JoinCell paints the joined sub-row of its join service.
	JoinCell
	// EmptyCell is a placeholder that paints nothing.
	EmptyCell
)

var tagStripper = bluemonday.StrictPolicy()

// Cell is a painter spec bound to a view. It holds no row data.
type Cell struct {
	env     *Env
	view    *registry.ViewDefinition
	kind    CellKind
	painter *registry.Painter
	spec    registry.PainterSpec
	tooltip *registry.Painter
}

// ResolveCells turns painter specs into cells. Specs naming an unregistered
// painter are left out; the returned cells are not index-aligned with specs.
func ResolveCells(env *Env, v *registry.ViewDefinition, specs []registry.PainterSpec) []*Cell {
	cells := make([]*Cell, 0, len(specs))
	for _, spec := range specs {
		p, ok := env.Registry.Painter(spec.Painter)
		if !ok {
			env.log().Debug("view %s: skipping unknown painter %s", v.Name, spec.Painter)
			continue
		}
		c := &Cell{env: env, view: v, kind: PlainCell, painter: p, spec: spec}
		if spec.IsJoined() {
			c.kind = JoinCell
		}
		if spec.Tooltip != "" {
			if tp, ok := env.Registry.Painter(spec.Tooltip); ok {
				c.tooltip = tp
			}
		}
		cells = append(cells, c)
	}
	return cells
}

// NewEmptyCell returns a placeholder cell that renders nothing.
func NewEmptyCell(env *Env, v *registry.ViewDefinition) *Cell {
	return &Cell{env: env, view: v, kind: EmptyCell}
}

// Kind returns whether the cell is plain, joined or empty.
func (c *Cell) Kind() CellKind { return c.kind }

// Painter returns the cell's painter, nil for empty cells.
func (c *Cell) Painter() *registry.Painter { return c.painter }

// Spec returns the painter spec the cell was resolved from.
func (c *Cell) Spec() registry.PainterSpec { return c.spec }

// PainterParameters merges the painter's schema defaults with the spec's
// parameters. It is nil when the painter takes no parameters.
func (c *Cell) PainterParameters() map[string]any {
	if c.painter == nil {
		return nil
	}
	params := c.painter.DefaultParams()
	if params == nil {
		return nil
	}
	for k, v := range c.spec.Params {
		params[k] = v
	}
	return params
}

// NeededColumns lists the columns the cell reads: the painter's columns, the
// link columns of the linked view's single-object filters and the tooltip
// painter's columns.
func (c *Cell) NeededColumns() []string {
	if c.painter == nil {
		return nil
	}
	cols := append([]string(nil), c.painter.ColumnsFor(c.PainterParameters())...)

	if c.spec.LinkView != "" {
		if target, ok := c.env.Registry.View(c.spec.LinkView, c.env.User); ok {
			for _, f := range c.env.Registry.SingleInfoFilters(target.SingleInfos) {
				cols = append(cols, f.LinkColumns...)
			}
		}
	}

	if c.tooltip != nil {
		cols = append(cols, c.tooltip.ColumnsFor(c.tooltip.DefaultParams())...)
	}
	return unique(cols)
}

// project replaces the row by its joined sub-row for join cells.
func (c *Cell) project(row registry.Row) registry.Row {
	if c.kind != JoinCell {
		return row
	}
	if sub, ok := row.JoinRows()[c.spec.Join.Service]; ok {
		return sub
	}
	return registry.Row{}
}

// Render paints the cell for row. A painter answering with empty class and
// content yields an empty cell without link or tooltip.
func (c *Cell) Render(row registry.Row) (class, content string, err error) {
	if c.painter == nil {
		return "", "", nil
	}
	row = c.project(row)
	if len(row) == 0 {
		return "", "", nil
	}

	class, content, err = c.paint(c.painter, c, row)
	if err != nil {
		return "", "", err
	}
	if class == "" && content == "" {
		return "", "", nil
	}

	if content != "" && c.spec.LinkView != "" {
		content = c.env.linkToView(content, row, c.spec.LinkView)
	}
	if content != "" && c.tooltip != nil {
		_, tip, err := c.paint(c.tooltip, tooltipInfo{cell: c}, row)
		if err != nil {
			return "", "", err
		}
		if tip = strings.TrimSpace(tagStripper.Sanitize(tip)); tip != "" {
			content = `<span title="` + tip + `">` + content + `</span>`
		}
	}
	return class, content, nil
}

// paint calls a render function and turns failures and panics into RENDER
// errors carrying the painter id and the row.
func (c *Cell) paint(p *registry.Painter, info registry.CellInfo, row registry.Row) (class, content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = c.renderError(p, row, fmt.Errorf("panic: %v", r))
		}
	}()
	class, content, err = p.Render(row, info, p.Args...)
	if err != nil {
		return "", "", c.renderError(p, row, err)
	}
	return class, content, nil
}

func (c *Cell) renderError(p *registry.Painter, row registry.Row, cause error) error {
	c.env.log().Error("painter %s failed on row %v: %v", p.ID, row, cause)
	return errors.WrapWithCode(cause, errors.ErrRender,
		fmt.Sprintf("Failed to render painter '%s' (Row: %v)", p.ID, row),
		"Check the painter's column values in the row above")
}

// tooltipInfo is the CellInfo of a cell's tooltip painter. The tooltip
// painter runs with its own default parameters.
type tooltipInfo struct {
	cell *Cell
}

func (t tooltipInfo) PainterID() string { return t.cell.tooltip.ID }
func (t tooltipInfo) Parameters() map[string]any { return t.cell.tooltip.DefaultParams() }
func (t tooltipInfo) JoinService() (string, bool) { return "", false }
func (t tooltipInfo) Option(name string) any { return t.cell.Option(name) }

// RenderForPDF renders the cell as plain text. Painters that are not
// printable render as empty.
func (c *Cell) RenderForPDF(row registry.Row) (class, text string, err error) {
	if c.Printable() == registry.NotPrinted {
		return "", "", nil
	}
	class, content, err := c.Render(row)
	if err != nil {
		return "", "", err
	}
	return class, html.UnescapeString(strings.TrimSpace(tagStripper.Sanitize(content))), nil
}

// Printable reports how PDF output treats the cell.
func (c *Cell) Printable() registry.Printable {
	if c.painter == nil {
		return registry.NotPrinted
	}
	return c.painter.Printable
}

// Title returns the column header. Join cells prefer their custom title and
// fall back to the join service name.
func (c *Cell) Title(short bool) string {
	if c.painter == nil {
		return ""
	}
	if c.kind == JoinCell {
		if c.spec.Join.Title != "" {
			return c.spec.Join.Title
		}
		return c.spec.Join.Service
	}
	if short {
		return c.painter.ShortFor(c.PainterParameters())
	}
	return c.painter.TitleFor(c.PainterParameters())
}

// ExportTitle is the machine friendly header used by CSV and JSON output.
func (c *Cell) ExportTitle() string {
	if c.painter == nil {
		return ""
	}
	if c.kind == JoinCell {
		return c.painter.ID + "." + c.spec.Join.Service
	}
	return c.painter.ID
}

// PainterOptions lists the painter options the cell reads.
func (c *Cell) PainterOptions() []string {
	if c.painter == nil {
		return nil
	}
	return c.painter.Options
}

// PainterID implements registry.CellInfo.
func (c *Cell) PainterID() string {
	if c.painter == nil {
		return ""
	}
	return c.painter.ID
}

// Parameters implements registry.CellInfo.
func (c *Cell) Parameters() map[string]any { return c.PainterParameters() }

// JoinService implements registry.CellInfo.
func (c *Cell) JoinService() (string, bool) {
	if c.kind != JoinCell {
		return "", false
	}
	return c.spec.Join.Service, true
}

// Option implements registry.CellInfo.
func (c *Cell) Option(name string) any { return c.env.option(name) }
