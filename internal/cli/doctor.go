package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/lsview/internal/config"
	"github.com/rileyhilliard/lsview/internal/doctor"
	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/output"
	"github.com/rileyhilliard/lsview/internal/ui"
)

var doctorNoSites bool

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, views, option store and sites",
	Long: `Run diagnostic checks on the config file, the views file, the painter
option store and every enabled site. Exits non-zero when a check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load errors are reported by the config checks.
		cfg, _ := config.LoadOrDefault(configFlag)

		checks := doctor.NewConfigChecks(configFlag, cfg)
		if cfg != nil && !doctorNoSites {
			checks = append(checks, doctor.NewSiteChecks(cfg)...)
		}
		results := doctor.RunAllParallel(cmd.Context(), checks)

		w := cmd.OutOrStdout()
		if machineMode {
			if err := WriteJSONSuccess(w, doctorOutput(checks, results)); err != nil {
				return err
			}
		} else {
			mode := output.ColorAuto
			if cfg != nil {
				mode = cfg.Output.Color
			}
			output.SetupColors(w, mode)
			renderDoctor(w, checks, results)
		}

		if doctor.HasFailures(results) {
			err := errors.New(errors.ErrConfig, doctor.Summary(results), "Fix the failed checks above")
			if machineMode {
				return silentError{err}
			}
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorNoSites, "no-sites", false, "skip querying the sites")
}

func doctorOutput(checks []doctor.Check, results []doctor.CheckResult) DoctorOutput {
	grouped := doctor.GroupByCategory(checks)
	out := DoctorOutput{Categories: make([]CategoryOutput, 0, len(grouped))}
	for _, cat := range doctor.CategoryOrder {
		indices, ok := grouped[cat]
		if !ok {
			continue
		}
		co := CategoryOutput{Name: cat}
		for _, idx := range indices {
			co.Results = append(co.Results, results[idx])
		}
		out.Categories = append(out.Categories, co)
	}

	counts := doctor.CountByStatus(results)
	out.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}
	return out
}

func renderDoctor(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) {
	headerStyle := ui.HeaderStyle()

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("lsview Diagnostic Report"))
	fmt.Fprintln(w)

	grouped := doctor.GroupByCategory(checks)
	for _, category := range doctor.CategoryOrder {
		indices, ok := grouped[category]
		if !ok || len(indices) == 0 {
			continue
		}
		fmt.Fprintln(w, headerStyle.Render(category))
		for _, idx := range indices {
			renderCheckResult(w, results[idx])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	if doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), doctor.Summary(results))
	} else {
		fmt.Fprintf(w, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), doctor.Summary(results))
	}
}

func renderCheckResult(w io.Writer, result doctor.CheckResult) {
	symbol, style := ui.SymbolSuccess, ui.SuccessStyle()
	switch result.Status {
	case doctor.StatusWarn:
		style = ui.WarningStyle()
	case doctor.StatusFail:
		symbol, style = ui.SymbolFail, ui.ErrorStyle()
	}

	fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), result.Message)
	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", ui.MutedStyle().Render(line))
		}
	}
}
