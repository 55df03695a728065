// Package view turns view definitions into rendered rows: it queries and
// merges Livestatus data, resolves painter specs into cells, sorts, groups
// and renders them.
package view

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/livestatus"
	"github.com/rileyhilliard/lsview/internal/logger"
	"github.com/rileyhilliard/lsview/internal/registry"
)

// Backend executes a query over all configured sites.
type Backend interface {
	Query(ctx context.Context, q livestatus.Query, opts livestatus.Options) (*livestatus.Result, error)
}

// Engine retrieves rows for data sources.
type Engine struct {
	Backend Backend
	Log     logger.Logger
	// AuthUser maps an auth domain to the user queries in that domain are
	// restricted to. Nil, or an empty result, means unrestricted.
	AuthUser func(domain string) string
}

// Request describes one retrieval.
type Request struct {
	DataSource *registry.DataSource
	// Table overrides the data source table.
	Table   string
	Columns []string
	// AddColumns defaults to the data source's implicit columns.
	AddColumns []string
	AddHeaders []string
	OnlySites  []string
	// Limit is the number of rows the caller wants; one more is fetched so
	// truncation can be detected. Zero means unlimited.
	Limit int
}

// Result is the outcome of a retrieval.
type Result struct {
	Rows []registry.Row
	// Dead holds the errors of sites that did not answer.
	Dead map[string]error
}

// Query fetches rows: it adds the merge column and state columns, drops
// implicit columns from the request, merges rows of different sites that
// share a merge key and finally applies the data source's post processing.
func (e *Engine) Query(ctx context.Context, req Request) (*Result, error) {
	ds := req.DataSource
	if ds == nil {
		return nil, errors.New(errors.ErrConfig, "Query without data source", "")
	}

	table := req.Table
	if table == "" {
		table = ds.Table
	}
	addColumns := req.AddColumns
	if addColumns == nil {
		addColumns = ds.AddColumns
	}

	var columns []string
	if ds.MergeBy != "" {
		columns = append(columns, ds.MergeBy)
	}
	columns = append(columns, req.Columns...)

	if !ds.HasInfo("log") {
		if ds.HasInfo("service") {
			columns = append(columns, "service_has_been_checked", "service_state")
		}
		if ds.HasInfo("host") {
			columns = append(columns, "host_has_been_checked", "host_state")
		}
	}
	// site is synthetic; the backend prepends it to every row.
	columns = without(without(unique(columns), addColumns), []string{"site"})

	headers := append([]string(nil), req.AddHeaders...)
	if ds.AddHeaders != "" {
		headers = append(headers, ds.AddHeaders)
	}

	opts := livestatus.Options{OnlySites: req.OnlySites}
	if req.Limit > 0 {
		opts.Limit = req.Limit + 1
	}
	if e.AuthUser != nil {
		opts.AuthUser = e.AuthUser(ds.Domain())
	}

	q := livestatus.Query{Table: table, Columns: columns, Headers: headers}
	res, err := e.Backend.Query(ctx, q, opts)
	if err != nil {
		return nil, err
	}

	data := res.Rows
	if ds.MergeBy != "" {
		data = MergeRows(data, append(append([]string(nil), columns...), addColumns...))
	}

	keys := append(append([]string{"site"}, columns...), addColumns...)
	rows := make([]registry.Row, 0, len(data))
	for _, values := range data {
		row := make(registry.Row, len(keys))
		for i, k := range keys {
			if i < len(values) {
				row[k] = values[i]
			} else {
				row[k] = nil
			}
		}
		rows = append(rows, row)
	}

	if ds.PostProcess != nil {
		rows = ds.PostProcess(rows)
	}

	logger.OrDefault(e.Log).Debug("%s: %d rows from %s", ds.ID, len(rows), describeSites(req.OnlySites))
	return &Result{Rows: rows, Dead: res.Dead}, nil
}

func describeSites(only []string) string {
	if len(only) == 0 {
		return "all sites"
	}
	return fmt.Sprintf("sites %v", only)
}

func unique(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0:0]
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func without(list, remove []string) []string {
	drop := make(map[string]bool, len(remove))
	for _, s := range remove {
		drop[s] = true
	}
	out := list[:0:0]
	for _, s := range list {
		if !drop[s] {
			out = append(out, s)
		}
	}
	return out
}
