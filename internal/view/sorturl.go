package view

import "github.com/rileyhilliard/lsview/internal/sortkey"

// sortDirective returns the ascending directive a header click on the cell
// toggles. ok is false when the view is not user sortable or the painter
// has no sorter.
func (c *Cell) sortDirective() (sortkey.Directive, bool) {
	if c.painter == nil || !c.view.UserSortable() {
		return sortkey.Directive{}, false
	}
	sorter, ok := c.env.Registry.SorterOfPainter(c.painter.ID)
	if !ok {
		return sortkey.Directive{}, false
	}
	if c.kind == JoinCell {
		return sortkey.AscJoined(sorter, c.spec.Join.Service), true
	}
	return sortkey.Asc(sorter), true
}

// SortToken returns the sort token a click on the cell's header leads to.
func (c *Cell) SortToken(state sortkey.State) (string, bool) {
	asc, ok := c.sortDirective()
	if !ok {
		return "", false
	}
	return state.Toggle(asc), true
}

// SortOrder returns "asc" or "desc" when the cell's sorter is the primary
// sorter, "" otherwise.
func (c *Cell) SortOrder(state sortkey.State) string {
	asc, ok := c.sortDirective()
	if !ok {
		return ""
	}
	return state.Order(asc)
}
