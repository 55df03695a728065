package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/lsview/internal/builtin"
	"github.com/rileyhilliard/lsview/internal/config"
	"github.com/rileyhilliard/lsview/internal/registry"
)

// ConfigFileCheck verifies that a config file exists.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(_ context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Error finding config: %v", err),
			Suggestion: "Check the --config path and its permissions",
		}
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'lsview sites add <id> <socket>' to create .lsview.yaml",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", filepath.Base(path)),
	}
}

// ConfigSchemaCheck verifies that the config loads and validates.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run(_ context.Context) CheckResult {
	cfg, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Failed to load config: %v", err),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Schema error: %v", err),
			Suggestion: "Fix the configuration errors in your .lsview.yaml",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Schema valid",
	}
}

// ConfigSitesCheck verifies sites are configured.
type ConfigSitesCheck struct {
	Config *config.Config
}

func (c *ConfigSitesCheck) Name() string     { return "config_sites" }
func (c *ConfigSitesCheck) Category() string { return CategoryConfig }

func (c *ConfigSitesCheck) Run(_ context.Context) CheckResult {
	enabled := len(c.Config.SiteIDs())
	disabled := len(c.Config.Sites) - enabled

	if enabled == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "No enabled sites configured",
			Suggestion: "Add a site with: lsview sites add <id> <socket>",
		}
	}

	msg := fmt.Sprintf("%d site%s configured", enabled, pluralize(enabled))
	if disabled > 0 {
		msg += fmt.Sprintf(", %d disabled", disabled)
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: msg,
	}
}

// ViewsCheck verifies that the views file parses and that every view
// resolves against the built-in plugins.
type ViewsCheck struct {
	Config *config.Config
}

func (c *ViewsCheck) Name() string     { return "views" }
func (c *ViewsCheck) Category() string { return CategoryViews }

func (c *ViewsCheck) Run(_ context.Context) CheckResult {
	var extra []*registry.ViewDefinition
	if c.Config.ViewsFile != "" {
		data, err := os.ReadFile(c.Config.ViewsFile)
		if err != nil {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusFail,
				Message:    fmt.Sprintf("Can't read views file: %v", err),
				Suggestion: "Check views_file in your config",
			}
		}
		if extra, err = registry.LoadViews(data); err != nil {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusFail,
				Message:    fmt.Sprintf("Views file %s is invalid: %v", filepath.Base(c.Config.ViewsFile), err),
				Suggestion: "Check the YAML syntax of the views file",
			}
		}
	}

	reg, err := builtin.NewRegistry(builtin.Options{
		Tags:               c.Config.Tags,
		StalenessThreshold: c.Config.StalenessThreshold,
	}, extra...)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Views don't resolve: %v", err),
			Suggestion: "Check painter, sorter and data source names in your views",
		}
	}

	total := len(reg.Views(c.Config.EffectiveUser()))
	msg := fmt.Sprintf("%d view%s available", total, pluralize(total))
	if len(extra) > 0 {
		msg += fmt.Sprintf(", %d from %s", len(extra), filepath.Base(c.Config.ViewsFile))
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: msg,
	}
}

// NewConfigChecks returns the checks of the config file. Checks that need
// a loaded config are only added when cfg is not nil.
func NewConfigChecks(configPath string, cfg *config.Config) []Check {
	checks := []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigSchemaCheck{ConfigPath: configPath},
	}
	if cfg != nil {
		checks = append(checks,
			&ConfigSitesCheck{Config: cfg},
			&ViewsCheck{Config: cfg},
			&OptionStoreCheck{Backend: cfg.Options.Backend, Dir: cfg.Options.Dir, User: cfg.EffectiveUser()},
		)
	}
	return checks
}
