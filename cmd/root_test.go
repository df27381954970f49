package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestReadConfigDefaultDiscovery(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, app+".yaml", "catalog:\n  source: custom.json\nai:\n  enabled: true\n")
	t.Chdir(dir)

	v := viper.New()
	if err := readConfig(v, ""); err != nil {
		t.Fatalf("readConfig: %v", err)
	}

	if got := v.GetString("catalog.source"); got != "custom.json" {
		t.Errorf("catalog.source = %q, want custom.json", got)
	}
	if !v.GetBool("ai.enabled") {
		t.Error("ai.enabled should be true from the discovered config")
	}
}

func TestReadConfigMissingDefaultIsFine(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := readConfig(viper.New(), ""); err != nil {
		t.Errorf("missing default config should not be an error, got %v", err)
	}
}

func TestReadConfigExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "custom.yaml", "server:\n  listen: \":9000\"\n")

	v := viper.New()
	if err := readConfig(v, path); err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	if got := v.GetString("server.listen"); got != ":9000" {
		t.Errorf("server.listen = %q, want :9000", got)
	}
}

func TestReadConfigExplicitFileMissing(t *testing.T) {
	if err := readConfig(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for an explicitly named missing config file")
	}
}

func TestReadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, app+".yaml", "catalog: [unclosed\n")
	t.Chdir(dir)

	if err := readConfig(viper.New(), ""); err == nil {
		t.Error("expected an error for a malformed discovered config file")
	}
}
