package builtin

import (
	"fmt"

	"github.com/rileyhilliard/lsview/internal/livestatus"
	"github.com/rileyhilliard/lsview/internal/registry"
)

// DefaultLogWindow bounds the log data source to recent entries.
const DefaultLogWindow = 4 * 3600

func (p *plugins) dataSources() []*registry.DataSource {
	return []*registry.DataSource{
		{
			ID: "hosts", Title: "All hosts", Table: "hosts",
			Infos:  []string{"host"},
			Keys:   []string{"host_name", "host_downtimes"},
			IDKeys: []string{"site", "host_name"},
			Join:   &registry.JoinSpec{DataSource: "services", Key: "host_name"},
		},
		{
			ID: "services", Title: "All services", Table: "services",
			Infos:   []string{"service", "host"},
			Keys:    []string{"host_name", "service_description", "service_downtimes"},
			IDKeys:  []string{"site", "host_name", "service_description"},
			JoinKey: "service_description",
		},
		{
			ID: "hostsbygroup", Title: "Hosts grouped by host groups", Table: "hostsbygroup",
			Infos:  []string{"host", "hostgroup"},
			Keys:   []string{"host_name", "host_downtimes"},
			IDKeys: []string{"site", "hostgroup_name", "host_name"},
			Join:   &registry.JoinSpec{DataSource: "services", Key: "host_name"},
			LinkFilters: map[string]string{
				"hostgroup": "opthostgroup",
			},
		},
		{
			ID: "merged_hostgroups", Title: "Hostgroups, merged", Table: "hostgroups",
			Infos:   []string{"hostgroup"},
			Keys:    []string{"hostgroup_name"},
			IDKeys:  []string{"hostgroup_name"},
			MergeBy: "hostgroup_name",
		},
		{
			ID: "log", Title: "The Logfile", Table: "log",
			Infos:      []string{"log", "host", "service"},
			Keys:       []string{},
			IDKeys:     []string{"site", "log_lineno", "log_time"},
			AddHeaders: p.logWindow(),
		},
	}
}

// logWindow restricts log queries to the last DefaultLogWindow seconds.
func (p *plugins) logWindow() string {
	since := p.age.now().Unix() - DefaultLogWindow
	return fmt.Sprintf("Filter: time >= %d", since)
}

// filters are the single-object filters views link by.
func filters() []*registry.Filter {
	single := func(id, title, info, column, variable string) *registry.Filter {
		return &registry.Filter{
			ID: id, Title: title, Info: info, Single: true,
			LinkColumns: []string{column},
			Vars: func(row registry.Row) []registry.URLVar {
				return []registry.URLVar{{Name: variable, Value: registry.ToString(row[column])}}
			},
		}
	}
	return []*registry.Filter{
		single("host", "Hostname", "host", "host_name", "host"),
		single("service", "Service", "service", "service_description", "service"),
		single("hostgroup", "Host group", "hostgroup", "hostgroup_name", "hostgroup"),
		{
			ID: "opthostgroup", Title: "Host is member of group", Info: "host",
			LinkColumns: []string{"hostgroup_name"},
			Vars: func(row registry.Row) []registry.URLVar {
				group := registry.ToString(row["hostgroup_name"])
				if group == "" {
					return nil
				}
				return []registry.URLVar{{Name: "opthostgroup", Value: group}}
			},
		},
	}
}

// FilterHeaders turns link variables back into Livestatus filter headers,
// so a linked view can be rendered for the object the link names.
func FilterHeaders(vars map[string]string) []string {
	columns := map[string]string{
		"host":         "host_name",
		"service":      "service_description",
		"hostgroup":    "hostgroup_name",
		"opthostgroup": "host_groups",
	}
	var out []string
	for _, name := range []string{"host", "service", "hostgroup", "opthostgroup"} {
		value, ok := vars[name]
		if !ok || value == "" {
			continue
		}
		if name == "opthostgroup" {
			out = append(out, fmt.Sprintf("Filter: %s >= %s", columns[name], livestatus.Encode(value)))
			continue
		}
		out = append(out, livestatus.FilterEq(columns[name], value))
	}
	return out
}
