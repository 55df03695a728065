package builtin

import "github.com/rileyhilliard/lsview/internal/registry"

func sorter(id, title, column string, cmp func(column string) func(a, b registry.Row) int) *registry.Sorter {
	return &registry.Sorter{ID: id, Title: title, Columns: []string{column}, Cmp: cmp(column)}
}

func sorters() []*registry.Sorter {
	return []*registry.Sorter{
		sorter("site", "Site", "site", cmpSimpleString),
		sorter("sitename_plain", "Site ID", "site", cmpSimpleString),
		sorter("sitealias", "Site", "site", cmpSimpleString),
		{
			ID: "site_host", Title: "Host site and name",
			Columns: []string{"site", "host_name"},
			Cmp: func(a, b registry.Row) int {
				if c := cmpSimpleString("site")(a, b); c != 0 {
					return c
				}
				return cmpNumSplit("host_name")(a, b)
			},
		},

		sorter("host", "Hostname", "host_name", cmpNumSplit),
		sorter("alias", "Host alias", "host_alias", cmpSimpleString),
		sorter("host_address", "Host address", "host_address", cmpIPAddress),
		sorter("host_state", "Host state", "host_state", cmpSimpleNumber),
		sorter("host_plugin_output", "Output of host check plugin", "host_plugin_output", cmpSimpleString),
		sorter("host_check_age", "Host check age", "host_last_check", cmpSimpleNumber),
		sorter("host_state_age", "Age of host state", "host_last_state_change", cmpSimpleNumber),
		sorter("num_services", "Number of services", "host_num_services", cmpSimpleNumber),
		sorter("num_services_ok", "Number of services in state OK", "host_num_services_ok", cmpSimpleNumber),
		sorter("num_services_warn", "Number of services in state WARN", "host_num_services_warn", cmpSimpleNumber),
		sorter("num_services_crit", "Number of services in state CRIT", "host_num_services_crit", cmpSimpleNumber),
		sorter("num_services_unknown", "Number of services in state UNKNOWN", "host_num_services_unknown", cmpSimpleNumber),
		sorter("num_services_pending", "Number of services in state PENDING", "host_num_services_pending", cmpSimpleNumber),

		sorter("svcdescr", "Service description", "service_description", cmpServiceName),
		sorter("service_state", "Service state", "service_state", cmpSimpleNumber),
		sorter("svc_plugin_output", "Output of check plugin", "service_plugin_output", cmpSimpleString),
		sorter("svc_check_age", "The time since the last check of the service", "service_last_check", cmpSimpleNumber),
		sorter("svc_state_age", "The age of the current service state", "service_last_state_change", cmpSimpleNumber),
		{
			ID: "svc_perf_val01", Title: "Service performance data value 1",
			Columns: []string{"service_perf_data"},
			Cmp:     cmpPerfValue("service_perf_data", 0),
		},

		sorter("hg_name", "Hostgroup name", "hostgroup_name", cmpSimpleString),
		sorter("hg_alias", "Hostgroup alias", "hostgroup_alias", cmpSimpleString),
		sorter("hg_num_hosts", "Number of hosts", "hostgroup_num_hosts", cmpSimpleNumber),
		sorter("hg_num_services", "Number of services", "hostgroup_num_services", cmpSimpleNumber),
		sorter("hg_members", "Hostgroup members", "hostgroup_members", cmpStringList),
		sorter("hg_worst_host_state", "Worst host state", "hostgroup_worst_host_state", cmpSimpleNumber),
		sorter("hg_worst_service_state", "Worst service state", "hostgroup_worst_service_state", cmpSimpleNumber),

		sorter("log_time", "Log: entry time", "log_time", cmpSimpleNumber),
		sorter("log_type", "Log: event", "log_type", cmpSimpleString),
		sorter("log_state", "Log: state", "log_state", cmpSimpleNumber),
	}
}
