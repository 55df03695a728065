package builtin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/lsview/internal/livestatus"
	"github.com/rileyhilliard/lsview/internal/logger"
	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/view"
)

func testRegistry(t *testing.T, extra ...*registry.ViewDefinition) *registry.Registry {
	t.Helper()
	reg, err := NewRegistry(Options{Now: func() time.Time { return testNow }}, extra...)
	require.NoError(t, err)
	return reg
}

func runner(t *testing.T, reg *registry.Registry, sites ...livestatus.Site) *view.Runner {
	t.Helper()
	ms := livestatus.NewMultiSite(sites, logger.Noop())
	return &view.Runner{
		Engine: &view.Engine{Backend: ms, Log: logger.Noop()},
		Env:    &view.Env{Registry: reg, User: "alice", Log: logger.Noop()},
	}
}

func svc(host, desc string, state int64) map[string]any {
	return map[string]any{
		"host_name":                host,
		"service_description":      desc,
		"service_state":            state,
		"service_has_been_checked": int64(1),
		"service_plugin_output":    desc + " output",
	}
}

func TestNewRegistry_BuiltinViews(t *testing.T) {
	reg := testRegistry(t)

	var names []string
	for _, v := range reg.Views("alice") {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{
		"allhosts", "allservices", "events", "host", "hostgroup", "hostgroups",
		"hostsummary", "service", "svcbyhost",
	}, names)

	ts, ok := reg.Option("ts_format")
	require.True(t, ok)
	assert.Equal(t, TSMixed, ts.Default)

	sorter, ok := reg.SorterOfPainter("service_description")
	require.True(t, ok)
	assert.Equal(t, "svcdescr", sorter)

	layout, ok := reg.Layout("csv")
	require.True(t, ok)
	assert.True(t, layout.CSVExport)
}

func TestNewRegistry_ExtraViewsOverrideAndRestrict(t *testing.T) {
	reg := testRegistry(t,
		&registry.ViewDefinition{Name: "allhosts", Title: "Mine", DataSource: "hosts", Painters: []registry.PainterSpec{{Painter: "host"}}},
		&registry.ViewDefinition{Name: "secret", DataSource: "hosts", Users: []string{"bob"}},
	)

	v, ok := reg.View("allhosts", "alice")
	require.True(t, ok)
	assert.Equal(t, "Mine", v.Title)

	_, ok = reg.View("secret", "alice")
	assert.False(t, ok)
	_, ok = reg.View("secret", "bob")
	assert.True(t, ok)
}

func TestRun_ServicesByHost(t *testing.T) {
	reg := testRegistry(t)
	fx := livestatus.NewFixture(map[string][]map[string]any{
		"services": {
			svc("web10", "Memory", 0),
			svc("web2", "CPU load", 1),
			svc("web2", "Check_MK", 0),
			svc("web10", "Interface 10", 2),
			svc("web10", "Interface 2", 0),
		},
	})
	r := runner(t, reg, livestatus.Site{ID: "prod", Conn: fx})
	v, _ := reg.View("svcbyhost", "alice")

	out, err := r.Run(context.Background(), view.RunRequest{View: v})
	require.NoError(t, err)
	require.Len(t, out.Groups, 2)

	hostCell := out.GroupCells[0]
	_, content, err := hostCell.Render(out.Groups[0].Rows[0])
	require.NoError(t, err)
	assert.Equal(t, `<a href="view.py?view_name=host&amp;host=web2&amp;site=prod">web2</a>`, content)

	var descs []string
	for _, row := range out.Groups[0].Rows {
		descs = append(descs, registry.ToString(row["service_description"]))
	}
	assert.Equal(t, []string{"Check_MK", "CPU load"}, descs)

	descs = nil
	for _, row := range out.Groups[1].Rows {
		descs = append(descs, registry.ToString(row["service_description"]))
	}
	assert.Equal(t, []string{"Interface 2", "Interface 10", "Memory"}, descs)

	class, content, err := out.Cells[0].Render(out.Groups[1].Rows[1])
	require.NoError(t, err)
	assert.Equal(t, "state svcstate state2", class)
	assert.Equal(t, "CRIT", content)
}

func TestRun_HostSummaryJoinsServices(t *testing.T) {
	reg := testRegistry(t)
	fx := livestatus.NewFixture(map[string][]map[string]any{
		"hosts": {
			{"host_name": "web01", "host_state": int64(0), "host_has_been_checked": int64(1)},
			{"host_name": "db01", "host_state": int64(1), "host_has_been_checked": int64(1)},
		},
		"services": {
			svc("web01", "CPU load", 1),
			svc("web01", "Memory", 0),
			svc("db01", "CPU load", 2),
			svc("db01", "Disk", 2),
		},
	})
	r := runner(t, reg, livestatus.Site{ID: "prod", Conn: fx})
	v, _ := reg.View("hostsummary", "alice")

	out, err := r.Run(context.Background(), view.RunRequest{View: v})
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "db01", out.Rows[0]["host_name"])

	agent, cpu, mem := out.Cells[2], out.Cells[3], out.Cells[4]
	assert.Equal(t, "Agent", agent.Title(false))
	assert.Equal(t, "CPU load", cpu.Title(false))

	_, content, err := cpu.Render(out.Rows[0])
	require.NoError(t, err)
	assert.Contains(t, content, ">CRIT</a>")
	assert.Contains(t, content, "service=CPU+load")

	_, content, err = mem.Render(out.Rows[1])
	require.NoError(t, err)
	assert.Contains(t, content, ">OK</a>")

	class, content, err := mem.Render(out.Rows[0])
	require.NoError(t, err)
	assert.Empty(t, class+content)

	_, content, err = agent.Render(out.Rows[0])
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestRun_HostgroupsMergeAcrossSites(t *testing.T) {
	reg := testRegistry(t)
	group := func(name string, hosts int64, worst int64, members ...any) map[string]any {
		return map[string]any{
			"hostgroup_name":                name,
			"hostgroup_alias":               name + " servers",
			"hostgroup_num_hosts":           hosts,
			"hostgroup_worst_service_state": worst,
			"hostgroup_members":             members,
		}
	}
	east := livestatus.NewFixture(map[string][]map[string]any{"hostgroups": {
		group("web", 2, 1, "web01", "web02"),
		group("db", 1, 0, "db01"),
	}})
	west := livestatus.NewFixture(map[string][]map[string]any{"hostgroups": {
		group("web", 1, 3, "web03"),
	}})
	r := runner(t, reg, livestatus.Site{ID: "east", Conn: east}, livestatus.Site{ID: "west", Conn: west})
	v, _ := reg.View("hostgroups", "alice")

	out, err := r.Run(context.Background(), view.RunRequest{View: v})
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)

	db, web := out.Rows[0], out.Rows[1]
	assert.Equal(t, "east", db["site"])
	assert.Equal(t, "", web["site"])
	assert.Equal(t, int64(3), web["hostgroup_num_hosts"])
	assert.Equal(t, int64(3), web["hostgroup_worst_service_state"])
	assert.Equal(t, []any{"web01", "web02", "web03"}, web["hostgroup_members"])

	// The link of a merged row carries no site hint.
	_, content, err := out.Cells[0].Render(web)
	require.NoError(t, err)
	assert.Equal(t, `<a href="view.py?view_name=hostgroup&amp;hostgroup=web">web</a>`, content)
}

func TestFilterHeaders(t *testing.T) {
	assert.Equal(t, []string{
		"Filter: host_name = web01",
		"Filter: service_description = CPU load",
		"Filter: host_groups >= web",
	}, FilterHeaders(map[string]string{
		"service": "CPU load", "host": "web01", "opthostgroup": "web", "site": "prod", "hostgroup": "",
	}))
	assert.Empty(t, FilterHeaders(nil))
}

func TestViewPermission(t *testing.T) {
	assert.True(t, ViewPermission("alice", &registry.ViewDefinition{}))
	assert.True(t, ViewPermission("alice", &registry.ViewDefinition{Users: []string{"bob", "alice"}}))
	assert.False(t, ViewPermission("carol", &registry.ViewDefinition{Users: []string{"bob"}}))
}
