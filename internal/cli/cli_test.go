package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const prodFixture = `tables:
  status:
    - program_version: "2.3.0p1"
      num_hosts: 2
      num_services: 3
  services:
    - host_name: web1
      service_description: CPU load
      service_state: 0
      service_has_been_checked: 1
      service_plugin_output: OK - load 0.12
    - host_name: web1
      service_description: Memory
      service_state: 2
      service_has_been_checked: 1
      service_plugin_output: CRIT - 97% used
    - host_name: db1
      service_description: Disk
      service_state: 1
      service_has_been_checked: 1
      service_plugin_output: WARN - 85% used
`

// testConfig writes a config with a fixture site "prod" and a disabled
// site "lab" and returns its path.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prod.yaml"), []byte(prodFixture), 0o644))
	path := filepath.Join(dir, ".lsview.yaml")
	cfg := `version: 1
user: alice
sites:
  prod:
    alias: Production
    socket: fixture:prod.yaml
  lab:
    socket: tcp:lab.example.com:6557
    disabled: true
options:
  backend: file
  dir: store
output:
  color: never
`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

// resetFlags restores every flag of cmd and its subcommands to its default,
// since flag values outlive a single Execute.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs lsview with args against the config at cfgPath and returns
// what it wrote to stdout.
func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	if cfgPath != "" {
		args = append([]string{"--config", cfgPath}, args...)
	}
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

// decodeEnvelope parses --json output, decoding data into v.
func decodeEnvelope(t *testing.T, raw string, v any) JSONEnvelope {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *JSONError      `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &env), raw)
	if v != nil {
		require.NoError(t, json.Unmarshal(env.Data, v))
	}
	return JSONEnvelope{Success: env.Success, Error: env.Error}
}
