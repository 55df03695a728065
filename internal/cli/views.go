package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/lsview/internal/output"
	"github.com/rileyhilliard/lsview/internal/ui"
)

var viewsAll bool

// ViewInfo describes a view in `lsview views --json`.
type ViewInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	DataSource  string `json:"datasource"`
	Description string `json:"description,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"`
}

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "List the views you can show",
	Long: `List the views available to the current user, built-in ones and
those of the config's views_file. Hidden views are the targets of links
(e.g. "host") and are listed with --all.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var infos []ViewInfo
		for _, v := range a.reg.Views(a.user) {
			if v.Hidden && !viewsAll {
				continue
			}
			infos = append(infos, ViewInfo{
				Name:        v.Name,
				Title:       v.DisplayTitle(),
				DataSource:  v.DataSource,
				Description: v.Description,
				Hidden:      v.Hidden,
			})
		}

		w := cmd.OutOrStdout()
		if machineMode {
			return WriteJSONSuccess(w, infos)
		}

		output.SetupColors(w, a.cfg.Output.Color)
		if len(infos) == 0 {
			fmt.Fprintln(w, ui.MutedStyle().Render("No views available"))
			return nil
		}
		headers := []string{"NAME", "TITLE", "DATASOURCE"}
		rows := make([][]string, len(infos))
		for i, info := range infos {
			title := info.Title
			if info.Hidden {
				title += " (hidden)"
			}
			rows[i] = []string{info.Name, title, info.DataSource}
		}
		widths := ui.ColumnWidths(headers, rows, 48)
		fmt.Fprintln(w, ui.HeaderStyle().Render(formatRow(headers, widths)))
		for _, r := range rows {
			fmt.Fprintln(w, formatRow(r, widths))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewsCmd)
	viewsCmd.Flags().BoolVarP(&viewsAll, "all", "a", false, "include hidden views")
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		for lipgloss.Width(c) > widths[i] {
			r := []rune(c)
			c = string(r[:len(r)-1])
		}
		parts[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
