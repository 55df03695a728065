package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/options"
	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/ui"
	"github.com/rileyhilliard/lsview/internal/view"
)

// OptionInfo describes a painter option in `lsview options get --json`.
type OptionInfo struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Value   any      `json:"value"`
	Default any      `json:"default"`
	Set     bool     `json:"set"`
	Choices []string `json:"choices,omitempty"`
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Manage the painter options of a view",
	Long: `Painter options change how a view displays values, e.g. the
timestamp format. They are stored per user and view.`,
}

var optionsGetCmd = &cobra.Command{
	Use:               "get VIEW",
	Short:             "Show the painter options a view uses",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeViewNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withViewOptions(cmd.Context(), args[0], func(a *app, v *registry.ViewDefinition, opts *options.PainterOptions, used []string) error {
			infos := make([]OptionInfo, 0, len(used))
			for _, name := range used {
				spec, _ := a.reg.Option(name)
				info := OptionInfo{
					Name:    name,
					Title:   spec.Title,
					Value:   opts.Get(name),
					Default: spec.Default,
					Set:     opts.IsSet(name),
				}
				for _, c := range spec.Choices {
					info.Choices = append(info.Choices, registry.ToString(c.Value))
				}
				infos = append(infos, info)
			}

			w := cmd.OutOrStdout()
			if machineMode {
				return WriteJSONSuccess(w, infos)
			}
			if len(infos) == 0 {
				fmt.Fprintf(w, "View '%s' uses no painter options\n", v.Name)
				return nil
			}
			for _, info := range infos {
				value := registry.ToString(info.Value)
				if !info.Set {
					value += " " + ui.MutedStyle().Render("(default)")
				}
				fmt.Fprintf(w, "%s = %s\n", info.Name, value)
			}
			return nil
		})
	},
}

var optionsSetCmd = &cobra.Command{
	Use:   "set VIEW NAME=VALUE...",
	Short: "Change painter options of a view",
	Example: `  lsview options set allhosts ts_format=abs
  lsview options set allservices ts_format=rel ts_date=%d.%m.%Y`,
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completeViewNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := make(map[string]string, len(args)-1)
		for _, kv := range args[1:] {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || name == "" {
				return errors.New(errors.ErrConfig,
					fmt.Sprintf("Invalid option assignment '%s'", kv),
					"Use NAME=VALUE, e.g. ts_format=abs")
			}
			raw[name] = value
		}

		return withViewOptions(cmd.Context(), args[0], func(a *app, v *registry.ViewDefinition, opts *options.PainterOptions, used []string) error {
			values := make(map[string]any, len(raw))
			for name, value := range raw {
				spec, ok := a.reg.Option(name)
				if !ok || !contains(used, name) {
					return errors.New(errors.ErrConfig,
						fmt.Sprintf("View '%s' does not use painter option '%s'", v.Name, name),
						fmt.Sprintf("Options of this view: %s", strings.Join(used, ", ")))
				}
				values[name] = choiceValue(spec, value)
			}
			changed, err := opts.Apply(cmd.Context(), used, values)
			if err != nil {
				return err
			}
			return reportChange(cmd, v.Name, changed)
		})
	},
}

var optionsResetCmd = &cobra.Command{
	Use:               "reset VIEW",
	Short:             "Restore the default painter options of a view",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeViewNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withViewOptions(cmd.Context(), args[0], func(a *app, v *registry.ViewDefinition, opts *options.PainterOptions, used []string) error {
			changed := len(opts.All()) > 0
			if err := opts.Reset(cmd.Context()); err != nil {
				return err
			}
			return reportChange(cmd, v.Name, changed)
		})
	},
}

var optionsEditCmd = &cobra.Command{
	Use:               "edit VIEW",
	Short:             "Edit the painter options of a view interactively",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeViewNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withViewOptions(cmd.Context(), args[0], func(a *app, v *registry.ViewDefinition, opts *options.PainterOptions, used []string) error {
			if len(used) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "View '%s' uses no painter options\n", v.Name)
				return nil
			}

			selected := make(map[string]*string, len(used))
			var fields []huh.Field
			for _, name := range used {
				spec, _ := a.reg.Option(name)
				value := registry.ToString(opts.Get(name))
				selected[name] = &value
				fields = append(fields, optionField(spec, selected[name]))
			}

			form := huh.NewForm(huh.NewGroup(fields...).Title("Painter options of " + v.DisplayTitle()))
			if err := form.Run(); err != nil {
				// User cancelled
				return nil
			}

			values := make(map[string]any, len(selected))
			for name, value := range selected {
				spec, _ := a.reg.Option(name)
				values[name] = choiceValue(spec, *value)
			}
			changed, err := opts.Apply(cmd.Context(), used, values)
			if err != nil {
				return err
			}
			return reportChange(cmd, v.Name, changed)
		})
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.AddCommand(optionsGetCmd, optionsSetCmd, optionsResetCmd, optionsEditCmd)
}

type optionsFunc func(a *app, v *registry.ViewDefinition, opts *options.PainterOptions, used []string) error

// withViewOptions loads the app, the view and its painter options, and
// the names of the options the view's cells and layout read.
func withViewOptions(ctx context.Context, name string, fn optionsFunc) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	v, err := a.lookupView(name)
	if err != nil {
		return err
	}
	opts, err := a.options(v.Name)
	if err != nil {
		return err
	}
	if err := opts.Load(ctx); err != nil {
		return err
	}

	env := a.env(opts)
	cells := append(view.ResolveCells(env, v, v.Painters), view.ResolveCells(env, v, v.GroupPainters)...)
	layout, _ := a.reg.Layout(v.Layout)
	return fn(a, v, opts, options.UsedOptions(a.reg, cells, layout))
}

func optionField(spec *registry.OptionSpec, value *string) huh.Field {
	title := spec.Title
	if title == "" {
		title = spec.ID
	}
	if len(spec.Choices) == 0 {
		return huh.NewInput().Title(title).Value(value)
	}
	choices := make([]huh.Option[string], 0, len(spec.Choices))
	for _, c := range spec.Choices {
		v := registry.ToString(c.Value)
		label := c.Title
		if label == "" {
			label = v
		}
		choices = append(choices, huh.NewOption(label, v))
	}
	return huh.NewSelect[string]().Title(title).Options(choices...).Value(value)
}

// choiceValue maps a selected string back to the typed choice value.
func choiceValue(spec *registry.OptionSpec, s string) any {
	for _, c := range spec.Choices {
		if registry.ToString(c.Value) == s {
			return c.Value
		}
	}
	return parseOptionValue(s)
}

func parseOptionValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

func reportChange(cmd *cobra.Command, viewName string, changed bool) error {
	w := cmd.OutOrStdout()
	if machineMode {
		return WriteJSONSuccess(w, map[string]any{"view": viewName, "changed": changed})
	}
	if changed {
		fmt.Fprintf(w, "%s Saved painter options of %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), viewName)
	} else {
		fmt.Fprintf(w, "Painter options of %s unchanged\n", viewName)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
