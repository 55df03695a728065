package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rileyhilliard/lsview/internal/errors"
)

var (
	siteIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

	validFormats  = map[string]bool{"text": true, "csv": true, "html": true, "json": true, "pdf": true}
	validColors   = map[string]bool{"auto": true, "always": true, "never": true}
	validBackends = map[string]bool{"file": true, "sqlite": true}
	socketKinds   = map[string]bool{"tcp": true, "unix": true, "ssh": true, "fixture": true}
)

// Validate checks the config and returns the first problem as a CONFIG
// error with a suggestion.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but lsview only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade lsview")
	}

	for _, id := range sortedSiteIDs(cfg.Sites) {
		if err := ValidateSite(id, cfg.Sites[id]); err != nil {
			return err
		}
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
			"Check the 'output' section of "+fileLabel(cfg))
	}

	if !validBackends[cfg.Options.Backend] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown options backend '%s'", cfg.Options.Backend),
			"Use 'file' or 'sqlite'")
	}
	if cfg.Options.Dir == "" {
		return errors.New(errors.ErrConfig, "options.dir is empty",
			"Set options.dir or remove it to use the default")
	}

	if cfg.StalenessThreshold <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("staleness_threshold must be positive, got %g", cfg.StalenessThreshold),
			fmt.Sprintf("The default is %g check intervals", DefaultStalenessThreshold))
	}

	return validateTagGroups(cfg.TagGroups)
}

// ValidateSite checks one site entry.
func ValidateSite(id string, site Site) error {
	if !siteIDPattern.MatchString(id) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid site id '%s'", id),
			"Site ids use lowercase letters, digits, '-' and '_'")
	}
	kind, rest, ok := strings.Cut(site.Socket, ":")
	if !ok || rest == "" || !socketKinds[kind] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Site '%s' has invalid socket '%s'", id, site.Socket),
			"Use tcp:HOST:PORT, unix:/PATH, ssh:HOST:/PATH or fixture:/PATH.yaml")
	}
	if kind == "ssh" {
		host, path, ok := strings.Cut(rest, ":")
		if !ok || host == "" || path == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Site '%s' has invalid ssh socket '%s'", id, site.Socket),
				"Use ssh:HOST:/PATH, e.g. ssh:monitor01:/omd/sites/prod/tmp/run/live")
		}
	}
	if site.Timeout < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Site '%s' has a negative timeout", id),
			"Use a duration like 10s")
	}
	return nil
}

func validateOutput(out OutputConfig) error {
	if !validFormats[out.Format] {
		return fmt.Errorf("unknown output format '%s' (use text, csv, html, json or pdf)", out.Format)
	}
	if !validColors[out.Color] {
		return fmt.Errorf("unknown color mode '%s' (use auto, always or never)", out.Color)
	}
	return nil
}

func validateTagGroups(groups []TagGroup) error {
	seen := map[string]bool{}
	for _, g := range groups {
		if g.ID == "" {
			return errors.New(errors.ErrConfig, "Tag group without id", "Give every tag group an id")
		}
		if seen[g.ID] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Tag group '%s' is defined twice", g.ID), "Tag group ids must be unique")
		}
		seen[g.ID] = true
	}
	return nil
}

func fileLabel(cfg *Config) string {
	if cfg.path != "" {
		return cfg.path
	}
	return ConfigFileName
}
