// Package builtin provides the stock plugin set: data sources for hosts,
// services, host groups and the monitoring log, their painters and sorters,
// the link filters, the timestamp painter options, layouts and the built-in
// views.
package builtin

import (
	_ "embed"
	"time"

	"github.com/rileyhilliard/lsview/internal/config"
	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/registry"
)

//go:embed views.yaml
var viewsYAML []byte

// Options parameterize the plugin set.
type Options struct {
	// Tags resolves host tags to titles. Nil means no tag groups.
	Tags *config.TagGroupCache
	// StalenessThreshold marks check results stale from this many check
	// intervals on.
	StalenessThreshold float64
	// SiteAlias maps a site id to its display alias.
	SiteAlias func(site string) string
	// Now defaults to time.Now.
	Now func() time.Time
}

type plugins struct {
	opts Options
	age  ager
}

func newPlugins(opts Options) *plugins {
	if opts.Tags == nil {
		opts.Tags = config.NewTagGroupCache(nil)
	}
	if opts.StalenessThreshold <= 0 {
		opts.StalenessThreshold = config.DefaultStalenessThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &plugins{opts: opts, age: ager{now: opts.Now}}
}

// Views returns the built-in view definitions.
func Views() ([]*registry.ViewDefinition, error) {
	views, err := registry.LoadViews(viewsYAML)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Built-in views are invalid", "")
	}
	return views, nil
}

// Register adds the plugin set, including the built-in views, to b.
func Register(b *registry.Builder, opts Options) (*registry.Builder, error) {
	p := newPlugins(opts)
	views, err := Views()
	if err != nil {
		return nil, err
	}
	return b.
		AddDataSource(p.dataSources()...).
		AddPainter(p.painters()...).
		AddSorter(sorters()...).
		AddFilter(filters()...).
		AddOption(options()...).
		AddLayout(layouts()...).
		AddView(views...).
		WithPermission(ViewPermission), nil
}

// NewRegistry builds a registry of the plugin set plus extra views, which
// replace built-in views of the same name.
func NewRegistry(opts Options, extra ...*registry.ViewDefinition) (*registry.Registry, error) {
	b, err := Register(registry.NewBuilder(), opts)
	if err != nil {
		return nil, err
	}
	return b.AddView(extra...).Build()
}

// ViewPermission lets a user see a view unless the view is restricted to
// other users.
func ViewPermission(user string, v *registry.ViewDefinition) bool {
	if len(v.Users) == 0 {
		return true
	}
	for _, u := range v.Users {
		if u == user {
			return true
		}
	}
	return false
}
