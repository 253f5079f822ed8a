package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recall.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
provider:
  api_key: test-key
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.Model != "deepseek-chat" {
		t.Errorf("Provider.Model = %q, want deepseek-chat", cfg.Provider.Model)
	}
	if cfg.Provider.BaseURL != "https://api.deepseek.com/v1" {
		t.Errorf("Provider.BaseURL = %q", cfg.Provider.BaseURL)
	}
	if cfg.History.Dir != "memory" {
		t.Errorf("History.Dir = %q, want memory", cfg.History.Dir)
	}
	if cfg.Gateway.Bind != "127.0.0.1:8844" {
		t.Errorf("Gateway.Bind = %q", cfg.Gateway.Bind)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("RECALL_TEST_KEY", "from-env")

	path := writeConfig(t, `
provider:
  api_key: ${RECALL_TEST_KEY}
history:
  dir: ${RECALL_TEST_DIR:-snapshots}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider.APIKey != "from-env" {
		t.Errorf("Provider.APIKey = %q, want from-env", cfg.Provider.APIKey)
	}
	if cfg.History.Dir != "snapshots" {
		t.Errorf("History.Dir = %q, want default snapshots", cfg.History.Dir)
	}
}

func TestLoad_UnresolvedVariableFails(t *testing.T) {
	path := writeConfig(t, `
provider:
  api_key: ${RECALL_DEFINITELY_UNSET_VAR}
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() succeeded with unresolved variable")
	}
	if !strings.Contains(err.Error(), "RECALL_DEFINITELY_UNSET_VAR") {
		t.Errorf("error %q does not name the variable", err)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "missing api key",
			content: `
provider:
  model: deepseek-chat
`,
			want: "api_key",
		},
		{
			name: "telegram enabled without token",
			content: `
provider:
  api_key: k
telegram:
  enabled: true
`,
			want: "telegram: token is required",
		},
		{
			name: "bad log level",
			content: `
provider:
  api_key: k
log:
  level: loud
`,
			want: `unknown level "loud"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() succeeded, want validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load() succeeded on missing file")
	}
}
