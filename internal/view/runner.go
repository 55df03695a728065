package view

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/sortkey"
)

// Runner executes views.
type Runner struct {
	Engine *Engine
	Env    *Env
}

// RunRequest is one view invocation.
type RunRequest struct {
	View *registry.ViewDefinition
	// SortToken is the user's sort token, "" for the view's default order.
	SortToken string
	OnlySites []string
	// Limit caps the number of rows, 0 means unlimited.
	Limit int
}

// Output is an executed view, ready for a renderer.
type Output struct {
	View       *registry.ViewDefinition
	DataSource *registry.DataSource
	Cells      []*Cell
	GroupCells []*Cell
	Sort       sortkey.State
	Rows       []registry.Row
	Groups     []Group
	// Truncated is set when the backend had more rows than the limit.
	Truncated bool
	// Dead maps sites that did not answer to their error.
	Dead map[string]error
}

// Run resolves the view's cells, fetches and joins its rows, sorts and
// groups them.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*Output, error) {
	v := req.View
	if v == nil {
		return nil, errors.New(errors.ErrConfig, "No view given", "")
	}
	reg := r.Env.Registry
	ds, ok := reg.DataSource(v.DataSource)
	if !ok {
		err := errors.UnknownID("data source", v.DataSource)
		err.Message = fmt.Sprintf("View '%s' uses unknown data source '%s'", v.Name, v.DataSource)
		return nil, err
	}

	out := &Output{
		View:       v,
		DataSource: ds,
		Cells:      ResolveCells(r.Env, v, v.Painters),
		GroupCells: ResolveCells(r.Env, v, v.GroupPainters),
	}
	out.Sort = r.sortState(out.GroupCells, req.SortToken, v)
	effective := out.Sort.Effective()

	columns, joinColumns, services := r.columns(ds, out, effective)

	res, err := r.Engine.Query(ctx, Request{
		DataSource: ds,
		Columns:    columns,
		AddHeaders: v.Filters,
		OnlySites:  req.OnlySites,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, err
	}
	out.Rows = res.Rows
	out.Dead = res.Dead

	if len(services) > 0 {
		dead, err := r.Engine.JoinRows(ctx, reg, out.Rows, JoinRequest{
			DataSource: ds,
			Services:   services,
			Columns:    joinColumns,
			OnlySites:  req.OnlySites,
		})
		if err != nil {
			return nil, err
		}
		out.Dead = mergeDead(out.Dead, dead)
	}

	SortRows(reg, out.Rows, effective, r.Env.log())

	if req.Limit > 0 && len(out.Rows) > req.Limit {
		out.Rows = out.Rows[:req.Limit]
		out.Truncated = true
	}
	out.Groups = GroupRows(out.Rows, out.GroupCells)
	return out, nil
}

// sortState derives the request's sort state. Group painters contribute one
// ascending sorter each; user sorters naming unknown sorters are dropped.
func (r *Runner) sortState(groupCells []*Cell, token string, v *registry.ViewDefinition) sortkey.State {
	reg := r.Env.Registry
	var group []sortkey.Directive
	for _, c := range groupCells {
		id, ok := reg.SorterOfPainter(c.PainterID())
		if !ok {
			continue
		}
		d := sortkey.Asc(id)
		if svc, joined := c.JoinService(); joined {
			d = sortkey.AscJoined(id, svc)
		}
		if !containsDirective(group, d) {
			group = append(group, d)
		}
	}

	state := sortkey.Separate(group, token, v.Sorters)
	known := state.User[:0:0]
	for _, d := range state.User {
		if _, ok := reg.Sorter(d.Sorter); !ok {
			r.Env.log().Warn("view %s: ignoring unknown sorter %s in sort token", v.Name, d.Sorter)
			continue
		}
		known = append(known, d)
	}
	state.User = known
	return state
}

// columns collects the columns of the main query and the joined query, and
// the join services to fetch.
func (r *Runner) columns(ds *registry.DataSource, out *Output, effective []sortkey.Directive) (columns, joinColumns, services []string) {
	for _, c := range append(append([]*Cell(nil), out.Cells...), out.GroupCells...) {
		if svc, joined := c.JoinService(); joined {
			joinColumns = append(joinColumns, c.NeededColumns()...)
			services = append(services, svc)
			continue
		}
		columns = append(columns, c.NeededColumns()...)
	}

	plain, joined := sorterColumns(r.Env.Registry, effective)
	columns = append(columns, plain...)
	joinColumns = append(joinColumns, joined...)
	for _, d := range effective {
		if d.Joined {
			services = append(services, d.Join)
		}
	}

	columns = append(columns, ds.Keys...)
	columns = append(columns, ds.IDKeys...)
	if ds.Join != nil && len(services) > 0 {
		columns = append(columns, ds.Join.Key)
	}
	return unique(columns), unique(joinColumns), unique(services)
}

func containsDirective(list []sortkey.Directive, d sortkey.Directive) bool {
	for _, x := range list {
		if x == d {
			return true
		}
	}
	return false
}

func mergeDead(a, b map[string]error) map[string]error {
	if len(b) == 0 {
		return a
	}
	if a == nil {
		a = make(map[string]error, len(b))
	}
	for site, err := range b {
		if _, ok := a[site]; !ok {
			a[site] = err
		}
	}
	return a
}
