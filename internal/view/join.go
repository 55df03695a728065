package view

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/livestatus"
	"github.com/rileyhilliard/lsview/internal/registry"
)

// JoinRequest describes the retrieval of joined sub-rows.
type JoinRequest struct {
	// DataSource is the data source of the parent rows.
	DataSource *registry.DataSource
	// Services are the join services to fetch.
	Services []string
	// Columns are the columns the joined cells and sorters read.
	Columns   []string
	OnlySites []string
}

type joinTarget struct {
	site string
	key  string
}

// JoinRows fetches the sub-rows of the requested join services and attaches
// them to rows as row["JOIN"][service]. Sub-rows are matched to parent rows
// by site and the data source's join key column.
func (e *Engine) JoinRows(ctx context.Context, reg *registry.Registry, rows []registry.Row, req JoinRequest) (map[string]error, error) {
	ds := req.DataSource
	if ds.Join == nil || len(req.Services) == 0 || len(rows) == 0 {
		return nil, nil
	}
	joinDS, ok := reg.DataSource(ds.Join.DataSource)
	if !ok {
		return nil, errors.UnknownID("data source", ds.Join.DataSource)
	}
	if joinDS.JoinKey == "" {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Data source '%s' cannot be joined: it has no join key", joinDS.ID),
			"Set JoinKey on the joined data source")
	}

	services := unique(req.Services)
	headers := make([]string, 0, len(services)+1)
	for _, s := range services {
		headers = append(headers, livestatus.FilterEq(joinDS.JoinKey, s))
	}
	if len(services) > 1 {
		headers = append(headers, fmt.Sprintf("Or: %d", len(services)))
	}

	columns := append([]string{ds.Join.Key, joinDS.JoinKey}, req.Columns...)
	res, err := e.Query(ctx, Request{
		DataSource: joinDS,
		Columns:    unique(columns),
		AddHeaders: headers,
		OnlySites:  req.OnlySites,
	})
	if err != nil {
		return nil, err
	}

	index := make(map[joinTarget]map[string]registry.Row)
	for _, sub := range res.Rows {
		t := joinTarget{
			site: registry.ToString(sub["site"]),
			key:  registry.ToString(sub[ds.Join.Key]),
		}
		if index[t] == nil {
			index[t] = make(map[string]registry.Row)
		}
		index[t][registry.ToString(sub[joinDS.JoinKey])] = sub
	}

	for _, row := range rows {
		t := joinTarget{
			site: registry.ToString(row["site"]),
			key:  registry.ToString(row[ds.Join.Key]),
		}
		joined := index[t]
		if joined == nil {
			joined = map[string]registry.Row{}
		}
		row["JOIN"] = joined
	}
	return res.Dead, nil
}
