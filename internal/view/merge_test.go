package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/lsview/internal/registry"
)

func TestMergeRows_SingleSiteUnchanged(t *testing.T) {
	columns := []string{"hostgroup_name", "hostgroup_num_hosts", "hostgroup_alias"}
	data := [][]any{
		{"local", "db", int64(2), "Databases"},
		{"local", "web", int64(4), "Web servers"},
	}

	assert.Equal(t, data, MergeRows(data, columns))
}

func TestMergeRows_SumsCounts(t *testing.T) {
	columns := []string{"hostgroup_name", "hostgroup_num_hosts"}
	a := []any{"east", "web", int64(3)}
	b := []any{"west", "web", int64(5)}

	assert.Equal(t, [][]any{{"", "web", int64(8)}}, MergeRows([][]any{a, b}, columns))
	assert.Equal(t, [][]any{{"", "web", int64(8)}}, MergeRows([][]any{b, a}, columns))
}

func TestMergeRows_WorstStates(t *testing.T) {
	tests := []struct {
		name   string
		column string
		a, b   int64
		want   int64
	}{
		{"critical dominates", "hostgroup_worst_service_state", 2, 3, 2},
		{"critical dominates reversed", "hostgroup_worst_service_state", 3, 2, 2},
		{"critical over ok", "hostgroup_worst_service_state", 0, 2, 2},
		{"max otherwise", "hostgroup_worst_service_state", 0, 1, 1},
		{"max otherwise reversed", "hostgroup_worst_service_state", 1, 0, 1},
		{"down dominates", "hostgroup_worst_host_state", 2, 1, 1},
		{"host max otherwise", "hostgroup_worst_host_state", 0, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := [][]any{{"east", "web", tt.a}, {"west", "web", tt.b}}
			merged := MergeRows(data, []string{"hostgroup_name", tt.column})
			require.Len(t, merged, 1)
			assert.Equal(t, tt.want, merged[0][2])
		})
	}
}

func TestMergeRows_KeepsFirstForUnknownColumns(t *testing.T) {
	data := [][]any{
		{"east", "web", "Web east", []any{"h1"}},
		{"west", "web", "Web west", []any{"h2"}},
	}
	merged := MergeRows(data, []string{"hostgroup_name", "hostgroup_alias", "hostgroup_members"})

	require.Len(t, merged, 1)
	assert.Equal(t, "Web east", merged[0][2])
	assert.Equal(t, []any{"h1", "h2"}, merged[0][3])
}

func TestMergeRows_SortsByKey(t *testing.T) {
	data := [][]any{
		{"east", "web", int64(1)},
		{"east", "db", int64(1)},
		{"west", "app", int64(1)},
	}
	merged := MergeRows(data, []string{"hostgroup_name", "hostgroup_num_hosts"})

	var keys []any
	for _, row := range merged {
		keys = append(keys, row[1])
	}
	assert.Equal(t, []any{"app", "db", "web"}, keys)
}

func TestMergePolicy(t *testing.T) {
	assert.Equal(t, int64(3), mergePolicy("num_hosts")(int64(1), int64(2)))
	assert.Equal(t, int64(3), mergePolicy("servicegroup_num_services_ok")(int64(1), int64(2)))
	assert.Equal(t, 1.5, mergePolicy("hostgroup_num_hosts")(1.0, 0.5))
	assert.Equal(t, "a", mergePolicy("hostgroup_alias")("a", "b"))
	assert.Equal(t, int64(2), mergePolicy("worst_service_state")(int64(1), int64(2)))
}

func TestEngineQuery_Columns(t *testing.T) {
	backend := &fakeBackend{rows: [][]any{
		{"local", "web01", int64(0), int64(0), int64(1), int64(0), []any{"x"}},
	}}
	e := &Engine{Backend: backend}
	ds := &registry.DataSource{
		ID: "services", Table: "services",
		Infos:      []string{"host", "service"},
		AddColumns: []string{"host_labels"},
	}

	res, err := e.Query(context.Background(), Request{
		DataSource: ds,
		Columns:    []string{"host_name", "service_state", "host_labels", "site"},
		Limit:      10,
	})
	require.NoError(t, err)

	require.Len(t, backend.queries, 1)
	assert.Equal(t, []string{
		"host_name", "service_state", "service_has_been_checked", "host_has_been_checked", "host_state",
	}, backend.queries[0].Columns)
	assert.Equal(t, 11, backend.opts[0].Limit)

	require.Len(t, res.Rows, 1)
	assert.Equal(t, registry.Row{
		"site":                     "local",
		"host_name":                "web01",
		"service_state":            int64(0),
		"service_has_been_checked": int64(0),
		"host_has_been_checked":    int64(1),
		"host_state":               int64(0),
		"host_labels":              []any{"x"},
	}, res.Rows[0])
}

func TestEngineQuery_LogTableHasNoStateColumns(t *testing.T) {
	backend := &fakeBackend{}
	e := &Engine{Backend: backend}
	ds := &registry.DataSource{ID: "log", Table: "log", Infos: []string{"log", "host", "service"}}

	res, err := e.Query(context.Background(), Request{DataSource: ds, Columns: []string{"log_time"}})
	require.NoError(t, err)

	assert.Empty(t, res.Rows)
	assert.Equal(t, []string{"log_time"}, backend.queries[0].Columns)
	assert.Zero(t, backend.opts[0].Limit)
}

func TestEngineQuery_MergeAndPostProcess(t *testing.T) {
	backend := &fakeBackend{rows: [][]any{
		{"east", "web", int64(3)},
		{"west", "web", int64(5)},
		{"west", "db", int64(1)},
	}}
	var seen int
	ds := &registry.DataSource{
		ID: "merged_hostgroups", Table: "hostgroups",
		Infos:      []string{"hostgroup"},
		MergeBy:    "hostgroup_name",
		AddHeaders: "Filter: hostgroup_num_hosts > 0",
		PostProcess: func(rows []registry.Row) []registry.Row {
			seen = len(rows)
			return rows[:1]
		},
	}
	e := &Engine{
		Backend:  backend,
		AuthUser: func(domain string) string { return "alice@" + domain },
	}

	res, err := e.Query(context.Background(), Request{
		DataSource: ds,
		Columns:    []string{"hostgroup_num_hosts"},
		AddHeaders: []string{"Filter: hostgroup_name != x"},
	})
	require.NoError(t, err)

	q := backend.queries[0]
	assert.Equal(t, []string{"hostgroup_name", "hostgroup_num_hosts"}, q.Columns)
	assert.Equal(t, []string{"Filter: hostgroup_name != x", "Filter: hostgroup_num_hosts > 0"}, q.Headers)
	assert.Equal(t, "alice@read", backend.opts[0].AuthUser)

	assert.Equal(t, 2, seen)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, registry.Row{"site": "west", "hostgroup_name": "db", "hostgroup_num_hosts": int64(1)}, res.Rows[0])
}

func TestEngineQuery_PropagatesBackendError(t *testing.T) {
	backend := &fakeBackend{err: assert.AnError}
	e := &Engine{Backend: backend}

	_, err := e.Query(context.Background(), Request{DataSource: &registry.DataSource{ID: "hosts", Table: "hosts"}})
	assert.ErrorIs(t, err, assert.AnError)
}
