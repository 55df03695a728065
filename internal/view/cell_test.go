package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lserrors "github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/logger"
	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/sortkey"
)

func oneCell(t *testing.T, env *Env, spec registry.PainterSpec) *Cell {
	t.Helper()
	cells := ResolveCells(env, servicesView(), []registry.PainterSpec{spec})
	require.Len(t, cells, 1)
	return cells[0]
}

func TestResolveCells_SkipsUnknownPainters(t *testing.T) {
	env := testEnv(t)
	cells := ResolveCells(env, servicesView(), []registry.PainterSpec{
		{Painter: "host_name"},
		{Painter: "no_such_painter"},
		{Painter: "service_state", Join: &registry.JoinColumn{Service: "CPU"}},
	})

	require.Len(t, cells, 2)
	assert.Equal(t, PlainCell, cells[0].Kind())
	assert.Equal(t, JoinCell, cells[1].Kind())
	assert.Equal(t, "service_state", cells[1].PainterID())
}

func TestCellRender_Plain(t *testing.T) {
	c := oneCell(t, testEnv(t), registry.PainterSpec{Painter: "service_state"})

	class, content, err := c.Render(registry.Row{"service_state": int64(2)})
	require.NoError(t, err)
	assert.Equal(t, "state2", class)
	assert.Equal(t, "2", content)
}

func TestCellRender_JoinProjection(t *testing.T) {
	c := oneCell(t, testEnv(t), registry.PainterSpec{
		Painter: "service_state",
		Join:    &registry.JoinColumn{Service: "CPU"},
	})
	row := registry.Row{
		"host_name": "web01",
		"JOIN": map[string]registry.Row{
			"CPU": {"service_state": int64(1)},
		},
	}

	_, content, err := c.Render(row)
	require.NoError(t, err)
	assert.Equal(t, "1", content)

	class, content, err := c.Render(registry.Row{"host_name": "web02"})
	require.NoError(t, err)
	assert.Empty(t, class)
	assert.Empty(t, content)
}

func TestCellRender_EmptySuppressesDecoration(t *testing.T) {
	c := oneCell(t, testEnv(t), registry.PainterSpec{
		Painter:  "nothing",
		LinkView: "host",
		Tooltip:  "plugin_output",
	})

	class, content, err := c.Render(registry.Row{
		"site":                  "local",
		"host_name":             "web01",
		"service_plugin_output": "OK",
	})
	require.NoError(t, err)
	assert.Empty(t, class)
	assert.Empty(t, content)
}

func TestCellRender_Link(t *testing.T) {
	c := oneCell(t, testEnv(t), registry.PainterSpec{Painter: "host_name", LinkView: "host"})

	_, content, err := c.Render(registry.Row{"site": "local", "host_name": "web 01"})
	require.NoError(t, err)
	assert.Equal(t, `<a href="view.py?view_name=host&amp;host=web+01&amp;site=local">web 01</a>`, content)
}

func TestCellRender_LinkToUnknownOrForbiddenView(t *testing.T) {
	env := testEnv(t)
	c := oneCell(t, env, registry.PainterSpec{Painter: "host_name", LinkView: "missing"})
	_, content, err := c.Render(registry.Row{"host_name": "web01"})
	require.NoError(t, err)
	assert.Equal(t, "web01", content)

	reg, err := testBuilder().WithPermission(func(user string, v *registry.ViewDefinition) bool {
		return v.Name != "host"
	}).Build()
	require.NoError(t, err)
	env = &Env{Registry: reg, Log: logger.Noop()}
	c = oneCell(t, env, registry.PainterSpec{Painter: "host_name", LinkView: "host"})
	_, content, err = c.Render(registry.Row{"host_name": "web01"})
	require.NoError(t, err)
	assert.Equal(t, "web01", content)
	assert.Equal(t, []string{"host_name"}, c.NeededColumns())
}

func TestCellRender_Tooltip(t *testing.T) {
	c := oneCell(t, testEnv(t), registry.PainterSpec{Painter: "host_name", Tooltip: "plugin_output"})

	_, content, err := c.Render(registry.Row{
		"host_name":             "web01",
		"service_plugin_output": "<b>OK</b> - all fine",
	})
	require.NoError(t, err)
	assert.Equal(t, `<span title="OK - all fine">web01</span>`, content)
}

func TestCellRender_TooltipUsesOwnParameters(t *testing.T) {
	reg, err := testBuilder().AddPainter(&registry.Painter{
		ID:      "perf_value",
		Columns: []string{"service_perf_data"},
		Params:  []registry.ParamSpec{{Name: "index", Default: 2}},
		Render: func(row registry.Row, cell registry.CellInfo, _ ...any) (string, string, error) {
			index, _ := registry.ToInt(cell.Parameters()["index"])
			values := strings.Split(registry.ToString(row["service_perf_data"]), " ")
			if index < 1 || int(index) > len(values) {
				return "", "", nil
			}
			return "", cell.PainterID() + ":" + values[index-1], nil
		},
	}).Build()
	require.NoError(t, err)
	env := &Env{Registry: reg, Log: logger.Noop()}

	c := oneCell(t, env, registry.PainterSpec{Painter: "service_description", Tooltip: "perf_value"})
	assert.Equal(t, []string{"service_description", "service_perf_data"}, c.NeededColumns())

	_, content, err := c.Render(registry.Row{
		"service_description": "CPU",
		"service_perf_data":   "load=3.5 util=40",
	})
	require.NoError(t, err)
	assert.Equal(t, `<span title="perf_value:util=40">CPU</span>`, content)
}

func TestCellRender_ErrorsNamePainter(t *testing.T) {
	for _, id := range []string{"broken", "panicky"} {
		t.Run(id, func(t *testing.T) {
			log := logger.NewBufferLogger()
			env := testEnv(t)
			env.Log = log
			c := oneCell(t, env, registry.PainterSpec{Painter: id})

			_, _, err := c.Render(registry.Row{"host_name": "web01"})
			require.Error(t, err)
			assert.True(t, lserrors.IsCode(err, lserrors.ErrRender))
			assert.Contains(t, err.Error(), "'"+id+"'")
			assert.Contains(t, err.Error(), "web01")
			assert.True(t, log.HasLevel("error"))
		})
	}
}

func TestCellRenderForPDF(t *testing.T) {
	c := oneCell(t, testEnv(t), registry.PainterSpec{Painter: "host_name", LinkView: "host"})

	_, text, err := c.RenderForPDF(registry.Row{"site": "local", "host_name": "a&b"})
	require.NoError(t, err)
	assert.Equal(t, "a&b", text)
}

func TestCellNeededColumns(t *testing.T) {
	c := oneCell(t, testEnv(t), registry.PainterSpec{
		Painter:  "service_description",
		LinkView: "host",
		Tooltip:  "plugin_output",
	})

	assert.Equal(t, []string{"service_description", "host_name", "service_plugin_output"}, c.NeededColumns())
}

func TestCellTitles(t *testing.T) {
	env := testEnv(t)
	plain := oneCell(t, env, registry.PainterSpec{Painter: "host_name"})
	assert.Equal(t, "Title of host_name", plain.Title(false))
	assert.Equal(t, "host_name", plain.Title(true))
	assert.Equal(t, "host_name", plain.ExportTitle())

	joined := oneCell(t, env, registry.PainterSpec{Painter: "service_state", Join: &registry.JoinColumn{Service: "CPU"}})
	assert.Equal(t, "CPU", joined.Title(false))
	assert.Equal(t, "service_state.CPU", joined.ExportTitle())

	titled := oneCell(t, env, registry.PainterSpec{Painter: "service_state", Join: &registry.JoinColumn{Service: "CPU", Title: "Load"}})
	assert.Equal(t, "Load", titled.Title(true))

	empty := NewEmptyCell(env, servicesView())
	class, content, err := empty.Render(registry.Row{"host_name": "x"})
	require.NoError(t, err)
	assert.Empty(t, class+content)
	assert.Equal(t, registry.NotPrinted, empty.Printable())
}

func TestCellOption_FallsBackToRegisteredDefault(t *testing.T) {
	reg, err := testBuilder().AddOption(&registry.OptionSpec{ID: "ts_format", Default: "mixed"}).Build()
	require.NoError(t, err)
	env := &Env{Registry: reg, Log: logger.Noop()}
	c := oneCell(t, env, registry.PainterSpec{Painter: "host_name"})

	assert.Equal(t, "mixed", c.Option("ts_format"))
	assert.Nil(t, c.Option("unknown"))

	env.Options = staticOptions{"ts_format": "epoch"}
	assert.Equal(t, "epoch", c.Option("ts_format"))
}

type staticOptions map[string]any

func (o staticOptions) Get(name string) any { return o[name] }

func TestCellSortToken(t *testing.T) {
	env := testEnv(t)
	v := servicesView()
	cells := ResolveCells(env, v, v.Painters)
	state := sortkey.Separate([]sortkey.Directive{sortkey.Asc("host_name")}, "", v.Sorters)

	token, ok := cells[0].SortToken(state)
	require.True(t, ok)
	assert.Equal(t, "host_name,-service_description", token)
	assert.Equal(t, "asc", cells[0].SortOrder(state))

	token, ok = cells[1].SortToken(state)
	require.True(t, ok)
	assert.Equal(t, "host_name,service_state,service_description", token)
	assert.Empty(t, cells[1].SortOrder(state))
}

func TestCellSortToken_Cycle(t *testing.T) {
	env := testEnv(t)
	v := &registry.ViewDefinition{Name: "plain", DataSource: "services"}
	c := ResolveCells(env, v, []registry.PainterSpec{{Painter: "service_state"}})[0]

	token := ""
	var got []string
	for i := 0; i < 4; i++ {
		next, ok := c.SortToken(sortkey.Separate(nil, token, nil))
		require.True(t, ok)
		got = append(got, next)
		token = next
	}
	assert.Equal(t, []string{"service_state", "-service_state", "", "service_state"}, got)
}

func TestCellSortToken_Unavailable(t *testing.T) {
	env := testEnv(t)
	off := false
	v := &registry.ViewDefinition{Name: "fixed", DataSource: "services", Sortable: &off}
	c := ResolveCells(env, v, []registry.PainterSpec{{Painter: "host_name"}})[0]
	_, ok := c.SortToken(sortkey.State{})
	assert.False(t, ok)

	c = ResolveCells(env, servicesView(), []registry.PainterSpec{{Painter: "nothing"}})[0]
	_, ok = c.SortToken(sortkey.State{})
	assert.False(t, ok)
}

func TestCellSortToken_Joined(t *testing.T) {
	env := testEnv(t)
	c := oneCell(t, env, registry.PainterSpec{Painter: "service_state", Join: &registry.JoinColumn{Service: "CPU"}})

	token, ok := c.SortToken(sortkey.Separate(nil, "service_state", nil))
	require.True(t, ok)
	assert.Equal(t, "service_state~CPU,service_state", token)
}
