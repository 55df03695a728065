package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/lsview/internal/config"
	"github.com/rileyhilliard/lsview/internal/livestatus"
	"github.com/rileyhilliard/lsview/internal/output"
	"github.com/rileyhilliard/lsview/internal/ui"
)

// sites add flags
var (
	sitesAddAlias   string
	sitesAddTimeout time.Duration
)

// SiteInfo describes a site in `lsview sites --json`.
type SiteInfo struct {
	ID        string `json:"id"`
	Alias     string `json:"alias,omitempty"`
	Socket    string `json:"socket"`
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	Hosts     int64  `json:"hosts,omitempty"`
	Services  int64  `json:"services,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Show the configured sites and whether they answer",
	Long: `Ask every enabled site for its version and object counts.

Use 'lsview sites add' to configure another site.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		infos, err := siteInfos(cmd, a)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if machineMode {
			return WriteJSONSuccess(w, infos)
		}
		output.SetupColors(w, a.cfg.Output.Color)
		rows := make([]ui.SiteTableRow, len(infos))
		for i, info := range infos {
			rows[i] = siteRow(info)
		}
		fmt.Fprint(w, ui.RenderSiteTable(rows))
		if len(rows) == 0 {
			fmt.Fprintln(w)
		}
		return nil
	},
}

var sitesAddCmd = &cobra.Command{
	Use:   "add ID SOCKET",
	Short: "Add a site to the config file",
	Long: `Add a site to the config file, creating .lsview.yaml in the current
directory when no config exists yet.

Sockets:
  tcp:HOST:PORT
  unix:/PATH
  ssh:HOST:/PATH   (HOST may be an ~/.ssh/config alias)
  fixture:/PATH    (canned tables, for testing views)`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTarget()
		if err != nil {
			return err
		}
		site := config.Site{Alias: sitesAddAlias, Socket: args[1], Timeout: sitesAddTimeout}
		if err := config.AddSite(path, args[0], site); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if machineMode {
			return WriteJSONSuccess(w, map[string]string{"id": args[0], "config": path})
		}
		fmt.Fprintf(w, "%s Added site %s to %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), args[0], path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
	sitesCmd.AddCommand(sitesAddCmd)
	sitesAddCmd.Flags().StringVar(&sitesAddAlias, "alias", "", "display name of the site")
	sitesAddCmd.Flags().DurationVar(&sitesAddTimeout, "timeout", 0, "query timeout (default 10s)")
}

// siteInfos returns all configured sites in id order. Enabled sites are
// asked for their status.
func siteInfos(cmd *cobra.Command, a *app) ([]SiteInfo, error) {
	status := map[string]livestatus.SiteStatus{}
	if ids := a.cfg.SiteIDs(); len(ids) > 0 {
		sites, err := a.openSites(ids)
		if err != nil {
			return nil, err
		}
		for _, st := range sites.Status(cmd.Context()) {
			status[st.Site.ID] = st
		}
	}

	ids := make([]string, 0, len(a.cfg.Sites))
	for id := range a.cfg.Sites {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	infos := make([]SiteInfo, 0, len(ids))
	for _, id := range ids {
		s := a.cfg.Sites[id]
		info := SiteInfo{ID: id, Alias: s.Alias, Socket: s.Socket}
		st, ok := status[id]
		switch {
		case !ok:
			info.Status = string(ui.SiteDisabled)
		case st.Up():
			info.Status = string(ui.SiteUp)
			info.Version = st.Version
			info.Hosts = st.Hosts
			info.Services = st.Services
			info.LatencyMS = st.Latency.Milliseconds()
		default:
			info.Status = string(ui.SiteDead)
			info.Error = st.Err.Error()
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func siteRow(info SiteInfo) ui.SiteTableRow {
	row := ui.SiteTableRow{Status: ui.SiteStatus(info.Status), Site: info.ID, Alias: info.Alias}
	switch row.Status {
	case ui.SiteUp:
		row.Version = info.Version
		row.Hosts = humanize.Comma(info.Hosts)
		row.Latency = fmt.Sprintf("%dms", info.LatencyMS)
	case ui.SiteDead:
		row.Version = info.Error
	}
	return row
}

// configTarget is the file `sites add` writes: --config, else the config
// in effect, else .lsview.yaml in the current directory.
func configTarget() (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	path, err := config.Find("")
	if err != nil {
		return "", err
	}
	if path == "" {
		return config.ConfigFileName, nil
	}
	return path, nil
}
