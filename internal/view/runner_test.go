package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lserrors "github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/livestatus"
	"github.com/rileyhilliard/lsview/internal/logger"
	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/sortkey"
)

func fixtureRunner(t *testing.T, views ...*registry.ViewDefinition) *Runner {
	t.Helper()
	fx := livestatus.NewFixture(map[string][]map[string]any{
		"services": {
			{"host_name": "web01", "service_description": "Memory", "service_state": int64(0)},
			{"host_name": "db01", "service_description": "Disk", "service_state": int64(2)},
			{"host_name": "web01", "service_description": "CPU", "service_state": int64(1)},
			{"host_name": "db01", "service_description": "CPU", "service_state": int64(0)},
			{"host_name": "web01", "service_description": "Disk", "service_state": int64(0)},
			{"host_name": "db01", "service_description": "Memory", "service_state": int64(0)},
		},
		"hosts": {
			{"host_name": "web01", "host_state": int64(0)},
			{"host_name": "db01", "host_state": int64(1)},
		},
	})
	ms := livestatus.NewMultiSite([]livestatus.Site{{ID: "local", Conn: fx}}, logger.Noop())
	env := testEnv(t, views...)
	return &Runner{Engine: &Engine{Backend: ms, Log: logger.Noop()}, Env: env}
}

func names(rows []registry.Row, column string) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = registry.ToString(r[column])
	}
	return out
}

func TestRun_GroupsAndSortsServices(t *testing.T) {
	v := servicesView()
	r := fixtureRunner(t, v)

	out, err := r.Run(context.Background(), RunRequest{View: v})
	require.NoError(t, err)

	require.Len(t, out.Groups, 2)
	assert.Equal(t, []string{"db01", "db01", "db01"}, names(out.Groups[0].Rows, "host_name"))
	assert.Equal(t, []string{"CPU", "Disk", "Memory"}, names(out.Groups[0].Rows, "service_description"))
	assert.Equal(t, []string{"web01", "web01", "web01"}, names(out.Groups[1].Rows, "host_name"))
	assert.Equal(t, []string{"CPU", "Disk", "Memory"}, names(out.Groups[1].Rows, "service_description"))

	assert.Equal(t, []sortkey.Directive{sortkey.Asc("host_name")}, out.Sort.Group)
	require.Len(t, out.Cells, 2)
	token, ok := out.Cells[0].SortToken(out.Sort)
	require.True(t, ok)
	assert.Equal(t, "host_name,-service_description", token)
	assert.False(t, out.Truncated)
	assert.Empty(t, out.Dead)
}

func TestRun_UserSortToken(t *testing.T) {
	v := servicesView()
	r := fixtureRunner(t, v)

	out, err := r.Run(context.Background(), RunRequest{View: v, SortToken: "host_name,-service_description,bogus"})
	require.NoError(t, err)

	assert.Equal(t, []sortkey.Directive{sortkey.Desc("service_description")}, out.Sort.User)
	assert.Empty(t, out.Sort.View)
	assert.Equal(t, []string{"Memory", "Disk", "CPU"}, names(out.Groups[0].Rows, "service_description"))

	token, ok := out.Cells[0].SortToken(out.Sort)
	require.True(t, ok)
	assert.Equal(t, "host_name", token)
}

func TestRun_LimitTruncates(t *testing.T) {
	v := servicesView()
	r := fixtureRunner(t, v)

	out, err := r.Run(context.Background(), RunRequest{View: v, Limit: 4})
	require.NoError(t, err)
	assert.True(t, out.Truncated)
	assert.Len(t, out.Rows, 4)

	out, err = r.Run(context.Background(), RunRequest{View: v, Limit: 6})
	require.NoError(t, err)
	assert.False(t, out.Truncated)
	assert.Len(t, out.Rows, 6)
}

func TestRun_ViewFilters(t *testing.T) {
	v := servicesView()
	v.Filters = []string{"Filter: service_state > 0"}
	r := fixtureRunner(t, v)

	out, err := r.Run(context.Background(), RunRequest{View: v})
	require.NoError(t, err)
	assert.Equal(t, []string{"Disk", "CPU"}, names(out.Rows, "service_description"))
}

func TestRun_JoinedColumns(t *testing.T) {
	v := &registry.ViewDefinition{
		Name:       "hostmatrix",
		DataSource: "hosts",
		Painters: []registry.PainterSpec{
			{Painter: "host_name"},
			{Painter: "service_state", Join: &registry.JoinColumn{Service: "CPU"}},
			{Painter: "service_state", Join: &registry.JoinColumn{Service: "Disk"}},
		},
		Sorters: []sortkey.Directive{sortkey.AscJoined("service_state", "Disk")},
	}
	r := fixtureRunner(t, v)

	out, err := r.Run(context.Background(), RunRequest{View: v})
	require.NoError(t, err)

	require.Len(t, out.Rows, 2)
	assert.Equal(t, []string{"web01", "db01"}, names(out.Rows, "host_name"))

	_, content, err := out.Cells[1].Render(out.Rows[0])
	require.NoError(t, err)
	assert.Equal(t, "1", content)
	_, content, err = out.Cells[2].Render(out.Rows[1])
	require.NoError(t, err)
	assert.Equal(t, "2", content)
	assert.NotContains(t, out.Rows[0].JoinRows(), "Memory")
}

func TestRun_UnknownDataSource(t *testing.T) {
	r := fixtureRunner(t)
	_, err := r.Run(context.Background(), RunRequest{View: &registry.ViewDefinition{Name: "x", DataSource: "nope"}})
	require.Error(t, err)
	assert.True(t, lserrors.IsCode(err, lserrors.ErrConfig))
	assert.Contains(t, err.Error(), "nope")
}

func TestRun_BackendErrorPropagates(t *testing.T) {
	v := servicesView()
	env := testEnv(t, v)
	r := &Runner{Engine: &Engine{Backend: &fakeBackend{err: lserrors.New(lserrors.ErrBackend, "down", "")}}, Env: env}

	_, err := r.Run(context.Background(), RunRequest{View: v})
	assert.True(t, lserrors.IsCode(err, lserrors.ErrBackend))
}

func TestSortRows_UnknownSorterIgnored(t *testing.T) {
	reg := testRegistry(t)
	log := logger.NewBufferLogger()
	rows := []registry.Row{{"host_name": "b"}, {"host_name": "a"}}

	SortRows(reg, rows, []sortkey.Directive{sortkey.Asc("bogus"), sortkey.Desc("host_name")}, log)
	assert.Equal(t, []string{"b", "a"}, names(rows, "host_name"))
	assert.True(t, log.HasLevel("warn"))
}
