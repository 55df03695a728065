package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/lsview/internal/registry"
)

func TestCanonicalize(t *testing.T) {
	got := Canonicalize(map[string]any{
		"b": []string{"x", "y"},
		"a": map[string]any{"z": 1, "y": 2},
	})

	assert.Equal(t, []any{
		[]any{"a", []any{[]any{"y", int64(2)}, []any{"z", int64(1)}}},
		[]any{"b", []any{"x", "y"}},
	}, got)
	assert.Equal(t, "web", Canonicalize("web"))
}

func TestGroupKey_IgnoresMapOrder(t *testing.T) {
	env := testEnv(t)
	cells := ResolveCells(env, servicesView(), []registry.PainterSpec{{Painter: "host_name"}})

	a := registry.Row{"host_name": map[string]any{"os": "linux", "tags": map[string]any{"a": 1, "b": 2}}}
	b := registry.Row{"host_name": map[string]any{"tags": map[string]any{"b": 2, "a": 1}, "os": "linux"}}
	c := registry.Row{"host_name": map[string]any{"tags": map[string]any{"b": 3, "a": 1}, "os": "linux"}}

	assert.Equal(t, GroupKey(a, cells), GroupKey(b, cells))
	assert.NotEqual(t, GroupKey(a, cells), GroupKey(c, cells))
}

func TestGroupKey_DistinguishesTypes(t *testing.T) {
	env := testEnv(t)
	cells := ResolveCells(env, servicesView(), []registry.PainterSpec{{Painter: "host_name"}})

	assert.NotEqual(t,
		GroupKey(registry.Row{"host_name": "1"}, cells),
		GroupKey(registry.Row{"host_name": int64(1)}, cells))
	assert.Equal(t,
		GroupKey(registry.Row{"host_name": 1}, cells),
		GroupKey(registry.Row{"host_name": int64(1)}, cells))
}

func TestGroupValue_UsesGroupFunction(t *testing.T) {
	b := testBuilder().AddPainter(&registry.Painter{
		ID:      "host_prefix",
		Columns: []string{"host_name"},
		Args:    []any{3},
		Render: func(registry.Row, registry.CellInfo, ...any) (string, string, error) {
			return "", "", nil
		},
		GroupBy: func(row registry.Row, args ...any) any {
			n := args[0].(int)
			return registry.ToString(row["host_name"])[:n]
		},
	})
	reg, err := b.Build()
	require.NoError(t, err)
	env := &Env{Registry: reg}
	cells := ResolveCells(env, servicesView(), []registry.PainterSpec{{Painter: "host_prefix"}, {Painter: "service_state"}})

	assert.Equal(t, []any{"web", int64(0)}, GroupValue(registry.Row{"host_name": "web01", "service_state": int64(0)}, cells))
	assert.Equal(t, []any{"web"}, GroupValue(registry.Row{"host_name": "web02"}, cells))
}

func TestGroupRows(t *testing.T) {
	env := testEnv(t)
	cells := ResolveCells(env, servicesView(), []registry.PainterSpec{{Painter: "host_name"}})
	rows := []registry.Row{
		{"host_name": "a", "service_description": "1"},
		{"host_name": "a", "service_description": "2"},
		{"host_name": "b", "service_description": "1"},
		{"host_name": "a", "service_description": "3"},
	}

	groups := GroupRows(rows, cells)
	require.Len(t, groups, 3)
	assert.Len(t, groups[0].Rows, 2)
	assert.Len(t, groups[1].Rows, 1)
	assert.Equal(t, groups[0].Key, groups[2].Key)

	all := GroupRows(rows, nil)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Rows, 4)

	assert.Nil(t, GroupRows(nil, cells))
}

func TestRowID(t *testing.T) {
	ds := &registry.DataSource{IDKeys: []string{"site", "host_name"}}

	a := RowID(ds, registry.Row{"site": "local", "host_name": "web01", "host_state": 0})
	b := RowID(ds, registry.Row{"site": "local", "host_name": "web01", "host_state": 2})
	c := RowID(ds, registry.Row{"site": "remote", "host_name": "web01"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
