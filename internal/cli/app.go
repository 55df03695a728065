package cli

import (
	"fmt"
	"os"

	"github.com/rileyhilliard/lsview/internal/builtin"
	"github.com/rileyhilliard/lsview/internal/config"
	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/livestatus"
	"github.com/rileyhilliard/lsview/internal/logger"
	"github.com/rileyhilliard/lsview/internal/options"
	"github.com/rileyhilliard/lsview/internal/registry"
	"github.com/rileyhilliard/lsview/internal/store"
	"github.com/rileyhilliard/lsview/internal/view"
)

// app bundles what a command needs to run views: the config, the registry
// built from it, and lazily opened sites and option store.
type app struct {
	cfg  *config.Config
	reg  *registry.Registry
	user string
	log  logger.Logger

	sites *livestatus.MultiSite
	store store.Store
}

// loadApp loads and validates the config selected by --config.
func loadApp() (*app, error) {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	user := cfg.EffectiveUser()
	if userFlag != "" {
		user = userFlag
	}
	return &app{cfg: cfg, reg: reg, user: user, log: logger.Default()}, nil
}

// buildRegistry registers the built-in plugins plus the views of the
// config's views file.
func buildRegistry(cfg *config.Config) (*registry.Registry, error) {
	var extra []*registry.ViewDefinition
	if cfg.ViewsFile != "" {
		data, err := os.ReadFile(cfg.ViewsFile)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Can't read views file %s", cfg.ViewsFile),
				"Check views_file in your config")
		}
		extra, err = registry.LoadViews(data)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid views file %s", cfg.ViewsFile), "")
		}
	}
	return builtin.NewRegistry(builtin.Options{
		Tags:               cfg.Tags,
		StalenessThreshold: cfg.StalenessThreshold,
		SiteAlias:          siteAlias(cfg),
	}, extra...)
}

func siteAlias(cfg *config.Config) func(string) string {
	return func(id string) string {
		if s, ok := cfg.Sites[id]; ok && s.Alias != "" {
			return s.Alias
		}
		return id
	}
}

// backend opens the enabled sites on first use.
func (a *app) backend() (*livestatus.MultiSite, error) {
	if a.sites != nil {
		return a.sites, nil
	}
	return a.openSites(a.cfg.SiteIDs())
}

func (a *app) openSites(ids []string) (*livestatus.MultiSite, error) {
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrConfig,
			"No sites configured",
			"Add one with: lsview sites add <id> <socket>")
	}
	sites := make([]livestatus.Site, 0, len(ids))
	for _, id := range ids {
		s := a.cfg.Sites[id]
		conn, err := livestatus.Open(s.Socket, s.SiteTimeout())
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Site '%s' has an invalid socket", id),
				"Use tcp:HOST:PORT, unix:/PATH, ssh:HOST:/PATH or fixture:/PATH")
		}
		sites = append(sites, livestatus.Site{ID: id, Alias: s.Alias, Conn: conn})
	}
	a.sites = livestatus.NewMultiSite(sites, a.log)
	a.sites.SetDebugQueries(a.cfg.DebugQueries || debugFlag)
	return a.sites, nil
}

// optionStore opens the painter option store on first use.
func (a *app) optionStore() (store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	st, err := store.Open(a.cfg.Options.Backend, a.cfg.Options.Dir)
	if err != nil {
		return nil, err
	}
	a.store = st
	return st, nil
}

// options returns the painter options of the user for a view.
func (a *app) options(viewName string) (*options.PainterOptions, error) {
	st, err := a.optionStore()
	if err != nil {
		return nil, err
	}
	return options.New(st, a.reg, a.user, viewName, a.log), nil
}

// env is the render environment of the user. opts may be nil.
func (a *app) env(opts view.Options) *view.Env {
	return &view.Env{
		Registry: a.reg,
		User:     a.user,
		Options:  opts,
		LinkBase: a.cfg.Output.LinkBase,
		Log:      a.log,
	}
}

// runner returns a runner over the enabled sites.
func (a *app) runner(opts view.Options) (*view.Runner, error) {
	sites, err := a.backend()
	if err != nil {
		return nil, err
	}
	return &view.Runner{
		Engine: &view.Engine{Backend: sites, Log: a.log},
		Env:    a.env(opts),
	}, nil
}

// lookupView returns a view the user may see.
func (a *app) lookupView(name string) (*registry.ViewDefinition, error) {
	v, ok := a.reg.View(name, a.user)
	if !ok {
		return nil, errors.New(errors.ErrLookup,
			fmt.Sprintf("View '%s' does not exist or is not permitted", name),
			"List the available views with: lsview views")
	}
	return v, nil
}

// Close releases the sites and the option store.
func (a *app) Close() {
	if a.sites != nil {
		if err := a.sites.Close(); err != nil {
			a.log.Debug("closing sites: %v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Debug("closing option store: %v", err)
		}
	}
}
