package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/lsview/internal/logger"
)

// Global flags
var (
	configFlag string
	userFlag   string
	debugFlag  bool
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "lsview",
	Short: "Views over Livestatus monitoring sites",
	Long: `lsview queries one or more Livestatus sites and renders the result
through views: named tables of painters, sorters and grouping.

Sites and settings come from .lsview.yaml (current directory or a parent)
or ~/.config/lsview/config.yaml.

Examples:
  lsview views
  lsview show allservices
  lsview show svcbyhost --sort -svcdescr --format csv
  lsview watch allhosts --interval 10s`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugFlag {
			_ = os.Setenv(logger.DebugEnv, "1")
		}
		logger.SetDefault(logger.NewEnvLogger(""))
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFlag, "config", "", "config file (default: .lsview.yaml, searched upwards)")
	pf.StringVar(&userFlag, "user", "", "user whose views and painter options apply (default: config user or $USER)")
	pf.BoolVar(&debugFlag, "debug", false, "log debug messages including Livestatus queries")
	pf.BoolVar(&machineMode, "json", false, "machine-readable JSON output")
}

// Execute runs the root command and exits non-zero on failure. Errors are
// printed to stderr, or as a JSON envelope on stdout with --json.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	var silent silentError
	if stderrors.As(err, &silent) {
		os.Exit(1)
	}
	if machineMode {
		_ = WriteJSONFromError(os.Stdout, err)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

// silentError fails the command without printing; the command already
// reported the problem.
type silentError struct{ error }
