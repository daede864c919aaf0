package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"proxymill/internal/config"
)

// stubRenderer mimics the renderer: every item list line yields an
// even-numbered image for the first face and an odd-numbered one for the last.
const stubRenderer = `for arg in "$@"; do
  case "$arg" in
    --cards=*) list="${arg#--cards=}" ;;
  esac
done
n=0
while IFS= read -r line || [ -n "$line" ]; do
  name="${line#1 }"
  name="${name%% --override*}"
  n=$((n+1))
  first="${name%% // *}"
  last="${name##* // }"
  echo "$first" > "images/fronts/$((2*n)) $first.png"
  echo "$last" > "images/fronts/$((2*n+1)) $last.png"
  echo "INFO [Proximity] $n/20 5ms $name OK"
done < "$list"
`

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath, "--log-level", "error")
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	path := filepath.Join(filepath.Dir(cfg.Paths.RendererDir), "config.toml")
	if err := os.WriteFile(path, []byte(encoded), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
