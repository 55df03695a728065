package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/lsview/internal/livestatus"
	"github.com/rileyhilliard/lsview/internal/logger"
	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/sortkey"
)

func columnPainter(id, column string) *registry.Painter {
	return &registry.Painter{
		ID:      id,
		Title:   "Title of " + id,
		Short:   id,
		Columns: []string{column},
		Render: func(row registry.Row, _ registry.CellInfo, _ ...any) (string, string, error) {
			return "", registry.ToString(row[column]), nil
		},
	}
}

func columnSorter(id, column string) *registry.Sorter {
	return &registry.Sorter{
		ID:      id,
		Columns: []string{column},
		Cmp: func(a, b registry.Row) int {
			return registry.CompareValues(a[column], b[column])
		},
	}
}

func testBuilder() *registry.Builder {
	b := registry.NewBuilder()
	b.AddPainter(
		columnPainter("host_name", "host_name"),
		columnPainter("service_description", "service_description"),
		columnPainter("plugin_output", "service_plugin_output"),
		&registry.Painter{
			ID:      "service_state",
			Columns: []string{"service_state"},
			Render: func(row registry.Row, _ registry.CellInfo, _ ...any) (string, string, error) {
				return "state" + registry.ToString(row["service_state"]), registry.ToString(row["service_state"]), nil
			},
		},
		&registry.Painter{
			ID:      "nothing",
			Columns: []string{"host_name"},
			Render: func(registry.Row, registry.CellInfo, ...any) (string, string, error) {
				return "", "", nil
			},
		},
		&registry.Painter{
			ID:      "broken",
			Columns: []string{"host_name"},
			Render: func(registry.Row, registry.CellInfo, ...any) (string, string, error) {
				return "", "", errors.New("bad value")
			},
		},
		&registry.Painter{
			ID:      "panicky",
			Columns: []string{"host_name"},
			Render: func(registry.Row, registry.CellInfo, ...any) (string, string, error) {
				panic("boom")
			},
		},
	)
	b.AddSorter(
		columnSorter("host_name", "host_name"),
		columnSorter("service_description", "service_description"),
		columnSorter("service_state", "service_state"),
	)
	b.AddDataSource(
		&registry.DataSource{
			ID:      "services",
			Table:   "services",
			Infos:   []string{"host", "service"},
			Keys:    []string{"host_name", "service_description"},
			IDKeys:  []string{"site", "host_name", "service_description"},
			JoinKey: "service_description",
		},
		&registry.DataSource{
			ID:     "hosts",
			Table:  "hosts",
			Infos:  []string{"host"},
			Keys:   []string{"host_name"},
			IDKeys: []string{"site", "host_name"},
			Join:   &registry.JoinSpec{DataSource: "services", Key: "host_name"},
		},
	)
	b.AddFilter(
		&registry.Filter{
			ID: "host", Info: "host", Single: true,
			LinkColumns: []string{"host_name"},
			Vars: func(row registry.Row) []registry.URLVar {
				return []registry.URLVar{{Name: "host", Value: registry.ToString(row["host_name"])}}
			},
		},
		&registry.Filter{
			ID: "service", Info: "service", Single: true,
			LinkColumns: []string{"service_description"},
			Vars: func(row registry.Row) []registry.URLVar {
				return []registry.URLVar{{Name: "service", Value: registry.ToString(row["service_description"])}}
			},
		},
	)
	b.AddView(&registry.ViewDefinition{
		Name:        "host",
		DataSource:  "services",
		SingleInfos: []string{"host"},
		Painters:    []registry.PainterSpec{{Painter: "service_description"}},
	})
	return b
}

func testRegistry(t *testing.T, views ...*registry.ViewDefinition) *registry.Registry {
	t.Helper()
	reg, err := testBuilder().AddView(views...).Build()
	require.NoError(t, err)
	return reg
}

func testEnv(t *testing.T, views ...*registry.ViewDefinition) *Env {
	t.Helper()
	return &Env{Registry: testRegistry(t, views...), User: "alice", Log: logger.Noop()}
}

// servicesView groups by host and sorts by service description.
func servicesView() *registry.ViewDefinition {
	return &registry.ViewDefinition{
		Name:          "svcbyhost",
		DataSource:    "services",
		GroupPainters: []registry.PainterSpec{{Painter: "host_name"}},
		Painters: []registry.PainterSpec{
			{Painter: "service_description"},
			{Painter: "service_state"},
		},
		Sorters: []sortkey.Directive{sortkey.Asc("service_description")},
	}
}

type fakeBackend struct {
	queries []livestatus.Query
	opts    []livestatus.Options
	rows    [][]any
	dead    map[string]error
	err     error
}

func (f *fakeBackend) Query(_ context.Context, q livestatus.Query, opts livestatus.Options) (*livestatus.Result, error) {
	f.queries = append(f.queries, q)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &livestatus.Result{Rows: f.rows, Dead: f.dead}, nil
}
