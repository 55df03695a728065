package builtin

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/rileyhilliard/lsview/internal/registry"
)

var (
	hostStateNames    = map[int64]string{0: "UP", 1: "DOWN", 2: "UNREACH"}
	serviceStateNames = map[int64]string{0: "OK", 1: "WARN", 2: "CRIT", 3: "UNKN"}
)

func esc(v any) string {
	return html.EscapeString(registry.ToString(v))
}

func truthy(v any) bool {
	n, ok := registry.ToInt(v)
	if ok {
		return n != 0
	}
	b, _ := v.(bool)
	return b
}

// paintText shows a column as is.
func paintText(column string) registry.RenderFunc {
	return func(row registry.Row, _ registry.CellInfo, _ ...any) (string, string, error) {
		return "", esc(row[column]), nil
	}
}

// paintState shows a host or service state. args[0] is the object kind.
func paintState(row registry.Row, _ registry.CellInfo, args ...any) (string, string, error) {
	what, _ := args[0].(string)
	if !truthy(row[what+"_has_been_checked"]) {
		if what == "host" {
			return "state hstate hstatep", "PEND", nil
		}
		return "state svcstate statep", "PEND", nil
	}
	state, _ := registry.ToInt(row[what+"_state"])
	if what == "host" {
		return fmt.Sprintf("state hstate hstate%d", state), stateName(hostStateNames, state), nil
	}
	return fmt.Sprintf("state svcstate state%d", state), stateName(serviceStateNames, state), nil
}

func stateName(names map[int64]string, state int64) string {
	if n, ok := names[state]; ok {
		return n
	}
	return fmt.Sprintf("%d", state)
}

// paintCount highlights non-zero service counts in the state's color.
// args are the column and the state, or -1 for pending.
func paintCount(row registry.Row, _ registry.CellInfo, args ...any) (string, string, error) {
	column, _ := args[0].(string)
	state, _ := args[1].(int)
	n, _ := registry.ToInt(row[column])
	if n == 0 {
		return "count zero", "0", nil
	}
	if state < 0 {
		return "count svcstate statep", fmt.Sprintf("%d", n), nil
	}
	return fmt.Sprintf("count svcstate state%d", state), fmt.Sprintf("%d", n), nil
}

func (p *plugins) paintCheckAge(row registry.Row, cell registry.CellInfo, args ...any) (string, string, error) {
	what, _ := args[0].(string)
	mode, dateFormat := p.age.optionStrings(cell)
	ts, _ := registry.ToInt(row[what+"_last_check"])
	class, content := p.age.paintAge(ts, truthy(row[what+"_has_been_checked"]), 0, mode, dateFormat, agePast)
	if p.isStale(row, what) {
		class += " staletime"
	}
	return class, content, nil
}

func (p *plugins) paintStateAge(row registry.Row, cell registry.CellInfo, args ...any) (string, string, error) {
	what, _ := args[0].(string)
	mode, dateFormat := p.age.optionStrings(cell)
	ts, _ := registry.ToInt(row[what+"_last_state_change"])
	class, content := p.age.paintAge(ts, truthy(row[what+"_has_been_checked"]), 10*time.Minute, mode, dateFormat, agePast)
	return class, content, nil
}

// isStale reports whether the object's staleness reached the threshold.
func (p *plugins) isStale(row registry.Row, what string) bool {
	staleness, ok := registry.ToFloat(row[what+"_staleness"])
	return ok && staleness >= p.opts.StalenessThreshold
}

func (p *plugins) paintLogTime(row registry.Row, cell registry.CellInfo, _ ...any) (string, string, error) {
	mode, dateFormat := p.age.optionStrings(cell)
	ts, _ := registry.ToInt(row["log_time"])
	class, content := p.age.paintAge(ts, true, time.Hour, mode, dateFormat, ageBoth)
	return class, content, nil
}

func paintLogState(row registry.Row, _ registry.CellInfo, _ ...any) (string, string, error) {
	state, ok := registry.ToInt(row["log_state"])
	if !ok {
		return "", "", nil
	}
	if registry.ToString(row["log_service_description"]) != "" {
		return fmt.Sprintf("state svcstate state%d", state), stateName(serviceStateNames, state), nil
	}
	return fmt.Sprintf("state hstate hstate%d", state), stateName(hostStateNames, state), nil
}

// hostTags returns the host's tag ids from its TAGS custom variable.
func hostTags(row registry.Row) []string {
	vars, _ := row["host_custom_variables"].(map[string]any)
	return strings.Fields(registry.ToString(vars["TAGS"]))
}

func (p *plugins) paintHostTags(row registry.Row, _ registry.CellInfo, _ ...any) (string, string, error) {
	var labels []string
	for _, tag := range hostTags(row) {
		if ref, ok := p.opts.Tags.Tag(tag); ok {
			labels = append(labels, html.EscapeString(p.opts.Tags.Label(ref.Group.ID, tag)))
		} else {
			labels = append(labels, html.EscapeString(tag))
		}
	}
	return "tags", strings.Join(labels, ", "), nil
}

// paintHostTag shows the host's tag of the group named by the "group"
// parameter.
func (p *plugins) paintHostTag(row registry.Row, cell registry.CellInfo, _ ...any) (string, string, error) {
	group := registry.ToString(cell.Parameters()["group"])
	for _, tag := range hostTags(row) {
		if ref, ok := p.opts.Tags.Tag(tag); ok && ref.Group.ID == group {
			title := ref.Tag.Title
			if title == "" {
				title = tag
			}
			return "", html.EscapeString(title), nil
		}
	}
	return "", "", nil
}

func (p *plugins) hostTagTitle(params map[string]any) string {
	id := registry.ToString(params["group"])
	if g, ok := p.opts.Tags.Group(id); ok && g.Title != "" {
		return "Host tag: " + g.Title
	}
	return "Host tag: " + id
}

// paintCustomVars lists custom variables as NAME: value, TAGS excluded.
func paintCustomVars(row registry.Row, _ registry.CellInfo, args ...any) (string, string, error) {
	column, _ := args[0].(string)
	vars, _ := row[column].(map[string]any)
	names := make([]string, 0, len(vars))
	for name := range vars {
		if name != "TAGS" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = html.EscapeString(name + ": " + registry.ToString(vars[name]))
	}
	return "", strings.Join(parts, "<br>"), nil
}

func paintPerfValue(row registry.Row, cell registry.CellInfo, _ ...any) (string, string, error) {
	n, _ := registry.ToInt(cell.Parameters()["index"])
	v := perfValue(registry.ToString(row["service_perf_data"]), int(n)-1)
	return "", html.EscapeString(v), nil
}

func perfValueTitle(params map[string]any) string {
	n, _ := registry.ToInt(params["index"])
	return fmt.Sprintf("Service performance data value %d", n)
}

func perfValueShort(params map[string]any) string {
	n, _ := registry.ToInt(params["index"])
	return fmt.Sprintf("Perf %d", n)
}

func paintList(column string) registry.RenderFunc {
	return func(row registry.Row, _ registry.CellInfo, _ ...any) (string, string, error) {
		list, _ := row[column].([]any)
		parts := make([]string, len(list))
		for i, e := range list {
			parts[i] = esc(e)
		}
		return "", strings.Join(parts, ", "), nil
	}
}

func (p *plugins) paintSiteAlias(row registry.Row, _ registry.CellInfo, _ ...any) (string, string, error) {
	site := registry.ToString(row["site"])
	if p.opts.SiteAlias != nil {
		if alias := p.opts.SiteAlias(site); alias != "" {
			return "", html.EscapeString(alias), nil
		}
	}
	return "", html.EscapeString(site), nil
}

func (p *plugins) painters() []*registry.Painter {
	count := func(id, title, short, column string, state int) *registry.Painter {
		return &registry.Painter{
			ID: id, Title: title, Short: short,
			Columns: []string{column},
			Render:  paintCount,
			Args:    []any{column, state},
		}
	}

	return []*registry.Painter{
		{ID: "sitename_plain", Title: "Site ID", Short: "Site", Columns: []string{"site"}, Render: paintText("site")},
		{ID: "sitealias", Title: "Site alias", Short: "Site", Columns: []string{"site"}, Render: p.paintSiteAlias},

		{ID: "host", Title: "Hostname", Short: "Host", Columns: []string{"host_name"}, Render: paintText("host_name")},
		{ID: "alias", Title: "Host alias", Short: "Alias", Columns: []string{"host_alias"}, Render: paintText("host_alias")},
		{ID: "host_address", Title: "Host address", Short: "IP address", Columns: []string{"host_address"}, Render: paintText("host_address")},
		{
			ID: "host_state", Title: "Host state", Short: "state",
			Columns: []string{"host_has_been_checked", "host_state"},
			Render:  paintState, Args: []any{"host"},
		},
		{ID: "host_plugin_output", Title: "Output of host check plugin", Short: "Status detail", Columns: []string{"host_plugin_output"}, Render: paintText("host_plugin_output")},
		{
			ID: "host_check_age", Title: "Host check age", Short: "Checked",
			Columns: []string{"host_has_been_checked", "host_last_check", "host_staleness"},
			Options: []string{"ts_format", "ts_date"},
			Render:  p.paintCheckAge, Args: []any{"host"},
		},
		{
			ID: "host_state_age", Title: "Age of host state", Short: "Age",
			Columns: []string{"host_has_been_checked", "host_last_state_change"},
			Options: []string{"ts_format", "ts_date"},
			Render:  p.paintStateAge, Args: []any{"host"},
		},
		{ID: "host_tags", Title: "Host tags", Short: "Tags", Columns: []string{"host_custom_variables"}, Render: p.paintHostTags},
		{
			ID: "host_tag", TitleFunc: p.hostTagTitle, ShortFunc: p.hostTagTitle,
			Columns: []string{"host_custom_variables"},
			Params:  []registry.ParamSpec{{Name: "group", Title: "Tag group", Default: ""}},
			Render:  p.paintHostTag,
		},
		{
			ID: "host_custom_vars", Title: "Host custom variables", Short: "Custom vars",
			Columns: []string{"host_custom_variables"},
			Render:  paintCustomVars, Args: []any{"host_custom_variables"},
			Printable: registry.NotPrinted,
		},
		{ID: "num_services", Title: "Number of services", Short: "Srvs", Columns: []string{"host_num_services"}, Render: paintText("host_num_services")},
		count("num_services_ok", "Number of services in state OK", "OK", "host_num_services_ok", 0),
		count("num_services_warn", "Number of services in state WARN", "Wa", "host_num_services_warn", 1),
		count("num_services_crit", "Number of services in state CRIT", "Cr", "host_num_services_crit", 2),
		count("num_services_unknown", "Number of services in state UNKNOWN", "Un", "host_num_services_unknown", 3),
		count("num_services_pending", "Number of services in state PENDING", "Pd", "host_num_services_pending", -1),

		{ID: "service_description", Title: "Service description", Short: "Service", Columns: []string{"service_description"}, Render: paintText("service_description"), Sorter: "svcdescr"},
		{
			ID: "service_state", Title: "Service state", Short: "State",
			Columns: []string{"service_has_been_checked", "service_state"},
			Render:  paintState, Args: []any{"service"},
		},
		{ID: "svc_plugin_output", Title: "Output of check plugin", Short: "Status detail", Columns: []string{"service_plugin_output"}, Render: paintText("service_plugin_output")},
		{
			ID: "svc_check_age", Title: "The time since the last check of the service", Short: "Checked",
			Columns: []string{"service_has_been_checked", "service_last_check", "service_staleness"},
			Options: []string{"ts_format", "ts_date"},
			Render:  p.paintCheckAge, Args: []any{"service"},
		},
		{
			ID: "svc_state_age", Title: "The age of the current service state", Short: "Age",
			Columns: []string{"service_has_been_checked", "service_last_state_change"},
			Options: []string{"ts_format", "ts_date"},
			Render:  p.paintStateAge, Args: []any{"service"},
		},
		{ID: "svc_perf_data", Title: "Service performance data", Short: "Perfdata", Columns: []string{"service_perf_data"}, Render: paintText("service_perf_data")},
		{
			ID: "svc_perf_val", TitleFunc: perfValueTitle, ShortFunc: perfValueShort,
			Columns: []string{"service_perf_data"},
			Params:  []registry.ParamSpec{{Name: "index", Title: "Value number", Default: 1}},
			Render:  paintPerfValue, Sorter: "svc_perf_val01",
		},
		{
			ID: "svc_custom_vars", Title: "Service custom variables", Short: "Custom vars",
			Columns: []string{"service_custom_variables"},
			Render:  paintCustomVars, Args: []any{"service_custom_variables"},
			Printable: registry.NotPrinted,
		},

		{ID: "hg_name", Title: "Hostgroup name", Short: "Name", Columns: []string{"hostgroup_name"}, Render: paintText("hostgroup_name")},
		{ID: "hg_alias", Title: "Hostgroup alias", Short: "Alias", Columns: []string{"hostgroup_alias"}, Render: paintText("hostgroup_alias")},
		{ID: "hg_num_hosts", Title: "Number of hosts", Short: "Hosts", Columns: []string{"hostgroup_num_hosts"}, Render: paintText("hostgroup_num_hosts")},
		{ID: "hg_num_services", Title: "Number of services", Short: "Services", Columns: []string{"hostgroup_num_services"}, Render: paintText("hostgroup_num_services")},
		count("hg_num_services_ok", "Number of services in state OK", "OK", "hostgroup_num_services_ok", 0),
		count("hg_num_services_warn", "Number of services in state WARN", "Wa", "hostgroup_num_services_warn", 1),
		count("hg_num_services_crit", "Number of services in state CRIT", "Cr", "hostgroup_num_services_crit", 2),
		{ID: "hg_members", Title: "Hostgroup members", Short: "Members", Columns: []string{"hostgroup_members"}, Render: paintList("hostgroup_members")},
		{
			ID: "hg_worst_host_state", Title: "Worst host state", Short: "Worst host",
			Columns: []string{"hostgroup_worst_host_state"},
			Render: func(row registry.Row, _ registry.CellInfo, _ ...any) (string, string, error) {
				state, _ := registry.ToInt(row["hostgroup_worst_host_state"])
				return fmt.Sprintf("state hstate hstate%d", state), stateName(hostStateNames, state), nil
			},
		},
		{
			ID: "hg_worst_service_state", Title: "Worst service state", Short: "Worst service",
			Columns: []string{"hostgroup_worst_service_state"},
			Render: func(row registry.Row, _ registry.CellInfo, _ ...any) (string, string, error) {
				state, _ := registry.ToInt(row["hostgroup_worst_service_state"])
				return fmt.Sprintf("state svcstate state%d", state), stateName(serviceStateNames, state), nil
			},
		},

		{
			ID: "log_time", Title: "Log: entry time", Short: "Time",
			Columns: []string{"log_time"}, Options: []string{"ts_format", "ts_date"},
			Render: p.paintLogTime, Printable: registry.PrintedAsTime,
		},
		{ID: "log_type", Title: "Log: event", Short: "Event", Columns: []string{"log_type"}, Render: paintText("log_type")},
		{
			ID: "log_state", Title: "Log: state of host/service at log time", Short: "State",
			Columns: []string{"log_state", "log_service_description"},
			Render:  paintLogState,
		},
		{ID: "log_plugin_output", Title: "Log: output", Short: "Output", Columns: []string{"log_plugin_output"}, Render: paintText("log_plugin_output")},
	}
}
