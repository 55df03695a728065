package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/rileyhilliard/lsview/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".lsview.yaml"
	// GlobalConfigDir is the directory for global config, relative to home.
	GlobalConfigDir = ".config/lsview"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found: "+path,
				"Run 'lsview sites add' to create one, or pass --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file "+path,
			"Check the file is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
//  1. explicit path (from --config)
//  2. .lsview.yaml in the current directory
//  3. .lsview.yaml in parent directories, stopping at a git root or home
//  4. ~/.config/lsview/config.yaml
//
// It returns "" when nothing is found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir || (home != "" && dir == home) {
			break
		}
		dir = parent
	}

	if home != "" {
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads the config Find locates, or returns defaults when
// there is none.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return DefaultConfig(), nil
	}
	return Load(path)
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("options.backend", d.Options.Backend)
	v.SetDefault("options.dir", d.Options.Dir)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("output.link_base", d.Output.LinkBase)
	v.SetDefault("staleness_threshold", d.StalenessThreshold)
	v.SetDefault("debug_queries", false)
}

// parseConfig converts viper config to a Config and resolves paths against
// the config file's directory.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}
	if cfg.Sites == nil {
		cfg.Sites = map[string]Site{}
	}

	base := configDir(path)
	cfg.path = path
	cfg.ViewsFile = ExpandPath(cfg.ViewsFile, base)
	cfg.Options.Dir = ExpandPath(cfg.Options.Dir, base)
	for id, site := range cfg.Sites {
		site.Socket = expandSocket(site.Socket, base)
		cfg.Sites[id] = site
	}
	cfg.Tags = NewTagGroupCache(cfg.TagGroups)

	return cfg, nil
}

// expandSocket resolves the path of unix and fixture sockets.
func expandSocket(spec, base string) string {
	kind, rest, ok := strings.Cut(spec, ":")
	if !ok {
		return spec
	}
	switch kind {
	case "unix", "fixture":
		return kind + ":" + ExpandPath(rest, base)
	}
	return spec
}

func configDir(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Dir(path)
	}
	return filepath.Dir(abs)
}
