package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/lsview/internal/builtin"
	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/output"
	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/ui"
	"github.com/rileyhilliard/lsview/internal/view"
)

// DefaultLimit is the row limit of show unless --limit says otherwise.
const DefaultLimit = 1000

// show command flags
var (
	showSort   string
	showFormat string
	showSites  []string
	showLimit  int
	showOutput string
	showVars   []string
)

var showCmd = &cobra.Command{
	Use:   "show VIEW",
	Short: "Render a view",
	Long: `Query the configured sites and render a view.

The sort token names sorters, a leading '-' reverses one:
  lsview show allhosts --sort -host,site

--var narrows the view to one object the way links between views do:
  lsview show host --var host=web1 --var site=prod`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeViewNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	f := showCmd.Flags()
	f.StringVar(&showSort, "sort", "", "sort token, e.g. -svcdescr,site")
	f.StringVarP(&showFormat, "format", "f", "", "output format: text, csv, html, json or pdf (default: output.format)")
	f.StringArrayVar(&showSites, "site", nil, "only query this site (repeatable)")
	f.IntVar(&showLimit, "limit", DefaultLimit, "maximum number of rows, 0 for unlimited")
	f.StringVarP(&showOutput, "output", "o", "", "write to FILE instead of stdout")
	f.StringArrayVar(&showVars, "var", nil, "link variable NAME=VALUE, e.g. host=web1 (repeatable)")
}

func runShow(cmd *cobra.Command, name string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	v, err := a.lookupView(name)
	if err != nil {
		return err
	}
	v, site, err := withVars(v, showVars)
	if err != nil {
		return err
	}
	onlySites, err := narrowSites(showSites, site)
	if err != nil {
		return err
	}

	format := a.cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format = showFormat
	}

	opts, err := a.options(v.Name)
	if err != nil {
		return err
	}
	if format == output.FormatPDF {
		// Printed times must not depend on when the page is read.
		if err := opts.Set("ts_format", builtin.TSAbs); err != nil {
			return err
		}
	}

	runner, err := a.runner(opts)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if showOutput != "" {
		f, err := os.Create(showOutput)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrRender,
				fmt.Sprintf("Can't write %s", showOutput), "Check the path and its permissions")
		}
		defer f.Close()
		w = f
	}

	out, err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), runner, view.RunRequest{
		View:      v,
		SortToken: showSort,
		OnlySites: onlySites,
		Limit:     showLimit,
	})
	if err != nil {
		return err
	}

	if machineMode {
		doc, err := output.NewDocument(out)
		if err != nil {
			return err
		}
		return WriteJSONSuccess(w, doc)
	}
	return render(w, a, format, out)
}

func render(w io.Writer, a *app, format string, out *view.Output) error {
	styled := output.SetupColors(w, a.cfg.Output.Color)
	renderers := output.NewRegistry(output.Options{
		Styled:   styled,
		Width:    output.TerminalWidth(w),
		LinkBase: a.cfg.Output.LinkBase,
	})
	rd, err := renderers.Get(format)
	if err != nil {
		return err
	}
	if err := rd.Render(w, out); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			fmt.Sprintf("Failed to render view '%s' as %s", out.View.Name, format), "")
	}
	return nil
}

func runWithSpinner(ctx context.Context, stderr io.Writer, runner *view.Runner, req view.RunRequest) (*view.Output, error) {
	if machineMode || !output.IsTerminal(stderr) {
		return runner.Run(ctx, req)
	}
	sp := ui.NewSpinner(stderr, "Querying sites")
	sp.Start()
	defer sp.Stop()
	return runner.Run(ctx, req)
}

// narrowSites restricts the --site selection to the site named by a "site"
// variable. An empty selection stands for all sites.
func narrowSites(sites []string, site string) ([]string, error) {
	if site == "" {
		return sites, nil
	}
	if len(sites) == 0 {
		return []string{site}, nil
	}
	for _, s := range sites {
		if strings.EqualFold(s, site) {
			return []string{s}, nil
		}
	}
	return nil, errors.New(errors.ErrConfig,
		fmt.Sprintf("Site '%s' is not among the selected sites (%s)", site, strings.Join(sites, ", ")),
		"Drop --var site or add the site with --site")
}

// withVars returns a copy of v narrowed by link variables, and the site
// the "site" variable names.
func withVars(v *registry.ViewDefinition, vars []string) (*registry.ViewDefinition, string, error) {
	if len(vars) == 0 {
		return v, "", nil
	}
	parsed := make(map[string]string, len(vars))
	for _, kv := range vars {
		k, val, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, "", errors.New(errors.ErrConfig,
				fmt.Sprintf("Invalid variable '%s'", kv),
				"Use NAME=VALUE, e.g. --var host=web1")
		}
		parsed[k] = val
	}

	narrowed := *v
	narrowed.Filters = append(append([]string(nil), v.Filters...), builtin.FilterHeaders(parsed)...)
	return &narrowed, parsed["site"], nil
}
