package cli

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/lsview/internal/config"
	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/monitor"
	"github.com/rileyhilliard/lsview/internal/view"
)

// watch command flags
var (
	watchInterval time.Duration
	watchSort     string
	watchSites    []string
	watchLimit    int
)

var watchCmd = &cobra.Command{
	Use:   "watch VIEW",
	Short: "Show a view in a live-updating terminal table",
	Long: `Render a view in an interactive table that refreshes periodically.

Keys 1-9 sort by a column (again to reverse, a third time to drop),
0 restores the view's own order, enter shows the selected row.

The config file and the views file are watched; changes apply on the
next refresh.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeViewNames,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	f := watchCmd.Flags()
	f.DurationVarP(&watchInterval, "interval", "i", monitor.DefaultInterval, "refresh interval")
	f.StringVar(&watchSort, "sort", "", "initial sort token")
	f.StringArrayVar(&watchSites, "site", nil, "only query this site (repeatable)")
	f.IntVar(&watchLimit, "limit", DefaultLimit, "maximum number of rows, 0 for unlimited")
}

func runWatch(ctx context.Context, name string) error {
	if watchInterval < time.Second {
		return errors.New(errors.ErrConfig,
			"Refresh interval must be at least 1s",
			"Use e.g. --interval 5s")
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	if _, err := a.lookupView(name); err != nil {
		a.Close()
		return err
	}

	src := &watchSource{app: a, viewName: name, sites: watchSites, limit: watchLimit}
	defer src.Close()

	var reloads <-chan config.Reload
	if a.cfg.Path() != "" {
		w, err := config.NewWatcher(a.cfg)
		if err != nil {
			a.log.Warn("not watching %s: %v", a.cfg.Path(), err)
		} else {
			src.watcher = w
			reloads = w.Changes()
		}
	}

	model := monitor.NewModel(src, watchSort, watchInterval, reloads)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return errors.WrapWithCode(err, errors.ErrRender, "Terminal UI failed", "")
	}
	return nil
}

// watchSource runs the watched view, switching to a reloaded config before
// the next fetch.
type watchSource struct {
	mu       sync.Mutex
	app      *app
	watcher  *config.Watcher
	viewName string
	sites    []string
	limit    int
}

// Fetch implements monitor.Source.
func (s *watchSource) Fetch(ctx context.Context, sortToken string) (*view.Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		if cfg := s.watcher.Current(); cfg != s.app.cfg {
			next, err := newApp(cfg)
			if err != nil {
				return nil, err
			}
			s.app.Close()
			s.app = next
		}
	}

	v, err := s.app.lookupView(s.viewName)
	if err != nil {
		return nil, err
	}
	opts, err := s.app.options(v.Name)
	if err != nil {
		return nil, err
	}
	runner, err := s.app.runner(opts)
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx, view.RunRequest{
		View:      v,
		SortToken: sortToken,
		OnlySites: s.sites,
		Limit:     s.limit,
	})
}

// Close stops watching and releases the app.
func (s *watchSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	s.app.Close()
}
