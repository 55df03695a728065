package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lserrors "github.com/rileyhilliard/lsview/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Empty(t, cfg.Sites)
	assert.Equal(t, "file", cfg.Options.Backend)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, "view.py", cfg.Output.LinkBase)
	assert.Equal(t, DefaultStalenessThreshold, cfg.StalenessThreshold)
	assert.NotNil(t, cfg.Tags)
	assert.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
version: 1
user: alice
sites:
  prod:
    alias: Production
    socket: tcp:monitor01:6557
    timeout: 3s
  lab:
    socket: fixture:lab.yaml
  old:
    socket: unix:/omd/sites/old/tmp/run/live
    disabled: true
views_file: views.yaml
options:
  backend: sqlite
  dir: state
output:
  format: csv
debug_queries: true
tag_groups:
  - id: criticality
    title: Criticality
    tags:
      - {id: prod, title: Productive system}
      - {id: test, title: Test system}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "alice", cfg.EffectiveUser())
	assert.Equal(t, []string{"lab", "prod"}, cfg.SiteIDs())
	assert.Equal(t, "Production", cfg.Sites["prod"].Alias)
	assert.Equal(t, 3*time.Second, cfg.Sites["prod"].SiteTimeout())
	assert.Equal(t, DefaultSiteTimeout, cfg.Sites["lab"].SiteTimeout())
	assert.Equal(t, "fixture:"+filepath.Join(dir, "lab.yaml"), cfg.Sites["lab"].Socket)
	assert.Equal(t, "tcp:monitor01:6557", cfg.Sites["prod"].Socket)
	assert.Equal(t, filepath.Join(dir, "views.yaml"), cfg.ViewsFile)
	assert.Equal(t, "sqlite", cfg.Options.Backend)
	assert.Equal(t, filepath.Join(dir, "state"), cfg.Options.Dir)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.True(t, cfg.DebugQueries)
	assert.Equal(t, DefaultStalenessThreshold, cfg.StalenessThreshold)
	assert.Equal(t, "Criticality: Productive system", cfg.Tags.Label("criticality", "prod"))
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, lserrors.IsCode(err, lserrors.ErrConfig))
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "sites: [unclosed")
	_, err := Load(path)
	assert.True(t, lserrors.IsCode(err, lserrors.ErrConfig))
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Setenv("HOME", t.TempDir())

	t.Run("explicit", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "version: 1")
		found, err := Find(path)
		require.NoError(t, err)
		assert.Equal(t, path, found)
	})

	t.Run("explicit missing", func(t *testing.T) {
		_, err := Find(filepath.Join(root, "nope.yaml"))
		assert.True(t, lserrors.IsCode(err, lserrors.ErrConfig))
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Chdir(nested)
		found, err := Find("")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("parent directory", func(t *testing.T) {
		path := writeConfig(t, root, "version: 1")
		t.Cleanup(func() { os.Remove(path) })
		t.Chdir(nested)

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, path, found)
	})

	t.Run("global", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		require.NoError(t, os.MkdirAll(filepath.Dir(global), 0o755))
		require.NoError(t, os.WriteFile(global, []byte("version: 1"), 0o644))
		t.Chdir(nested)

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, global, found)
	})
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Path())
	assert.Empty(t, cfg.Sites)
}

func TestExpand(t *testing.T) {
	t.Setenv("USER", "alice")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", Expand(""))
	assert.Equal(t, "/data/alice", Expand("/data/${USER}"))
	assert.Equal(t, home+"/x", Expand("${HOME}/x"))
	assert.Equal(t, filepath.Join(home, "x"), ExpandTilde("~/x"))
	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, "~bob/x", ExpandTilde("~bob/x"))
	assert.Equal(t, "/base/rel", ExpandPath("rel", "/base"))
	assert.Equal(t, "/abs", ExpandPath("/abs", "/base"))
}

func TestEffectiveUser_FallsBackToEnv(t *testing.T) {
	t.Setenv("USER", "bob")
	assert.Equal(t, "bob", DefaultConfig().EffectiveUser())
}
