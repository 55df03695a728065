// Package config loads and validates the lsview configuration: the sites to
// query, where view definitions and painter options live, and how output is
// rendered.
package config

import (
	"os"
	"sort"
	"time"
)

// CurrentConfigVersion is the newest config schema this build understands.
const CurrentConfigVersion = 1

// DefaultSiteTimeout applies to sites without an explicit timeout.
const DefaultSiteTimeout = 10 * time.Second

// DefaultStalenessThreshold is the number of check intervals after which a
// check result counts as stale.
const DefaultStalenessThreshold = 1.5

// Config is the top-level configuration.
type Config struct {
	Version int `mapstructure:"version" yaml:"version"`
	// User is the user views are rendered for. Defaults to $USER.
	User  string          `mapstructure:"user" yaml:"user,omitempty"`
	Sites map[string]Site `mapstructure:"sites" yaml:"sites"`
	// ViewsFile holds additional view definitions. Relative paths are
	// resolved against the config file's directory.
	ViewsFile          string        `mapstructure:"views_file" yaml:"views_file,omitempty"`
	Options            OptionsConfig `mapstructure:"options" yaml:"options"`
	Output             OutputConfig  `mapstructure:"output" yaml:"output"`
	StalenessThreshold float64       `mapstructure:"staleness_threshold" yaml:"staleness_threshold"`
	// DebugQueries logs every query sent to a site.
	DebugQueries bool       `mapstructure:"debug_queries" yaml:"debug_queries,omitempty"`
	TagGroups    []TagGroup `mapstructure:"tag_groups" yaml:"tag_groups,omitempty"`

	// Tags indexes TagGroups. It survives reloads, see Watcher.
	Tags *TagGroupCache `mapstructure:"-" yaml:"-"`

	path string
}

// Site is one Livestatus endpoint.
type Site struct {
	Alias string `mapstructure:"alias" yaml:"alias,omitempty"`
	// Socket is tcp:HOST:PORT, unix:/PATH, ssh:HOST:/PATH or
	// fixture:/PATH.yaml.
	Socket   string        `mapstructure:"socket" yaml:"socket"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
	Disabled bool          `mapstructure:"disabled" yaml:"disabled,omitempty"`
}

// OptionsConfig selects where painter options are persisted.
type OptionsConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `mapstructure:"backend" yaml:"backend"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	// Format is text, csv, html, json or pdf.
	Format string `mapstructure:"format" yaml:"format"`
	// Color is auto, always or never.
	Color string `mapstructure:"color" yaml:"color"`
	// LinkBase is the target of links to other views in HTML output.
	LinkBase string `mapstructure:"link_base" yaml:"link_base,omitempty"`
}

// TagGroup is a set of mutually exclusive host tags.
type TagGroup struct {
	ID    string `mapstructure:"id" yaml:"id"`
	Title string `mapstructure:"title" yaml:"title"`
	Tags  []Tag  `mapstructure:"tags" yaml:"tags"`
}

// Tag is one choice of a tag group.
type Tag struct {
	ID    string `mapstructure:"id" yaml:"id"`
	Title string `mapstructure:"title" yaml:"title"`
}

// DefaultConfig returns a config with every default filled in and no sites.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Sites:   map[string]Site{},
		Options: OptionsConfig{
			Backend: "file",
			Dir:     ExpandTilde("~/.local/share/lsview"),
		},
		Output: OutputConfig{
			Format:   "text",
			Color:    "auto",
			LinkBase: "view.py",
		},
		StalenessThreshold: DefaultStalenessThreshold,
		Tags:               NewTagGroupCache(nil),
	}
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

// EffectiveUser returns the configured user, falling back to $USER.
func (c *Config) EffectiveUser() string {
	if c.User != "" {
		return c.User
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "nobody"
}

// SiteIDs returns the ids of all enabled sites, sorted.
func (c *Config) SiteIDs() []string {
	ids := make([]string, 0, len(c.Sites))
	for id, s := range c.Sites {
		if !s.Disabled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SiteTimeout returns the timeout of a site, or the default.
func (s Site) SiteTimeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultSiteTimeout
}
