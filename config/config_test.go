package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeKernelToml(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing kernel.toml: %v", err)
	}
	return dir
}

func TestLoad_ValidConfig(t *testing.T) {
	dir := writeKernelToml(t, `
[cache]
path = "shapes.db"

[plugins.CubeOracle]
address = "localhost:9001"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Cache.Path != filepath.Join(dir, "shapes.db") {
		t.Errorf("Cache.Path: got %q, want %q", cfg.Cache.Path, filepath.Join(dir, "shapes.db"))
	}
	plugin, ok := cfg.Plugins["CubeOracle"]
	if !ok {
		t.Fatal("expected a CubeOracle plugin entry")
	}
	if plugin.Address != "localhost:9001" {
		t.Errorf("plugin address: got %q, want %q", plugin.Address, "localhost:9001")
	}
}

func TestLoad_DefaultsCachePathNextToConfig(t *testing.T) {
	dir := writeKernelToml(t, "")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Path != filepath.Join(dir, "shapes.db") {
		t.Errorf("default cache path: got %q, want %q", cfg.Cache.Path, filepath.Join(dir, "shapes.db"))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected an error loading a directory with no kernel.toml")
	}
}

func TestLoad_RejectsMalformedPluginAddress(t *testing.T) {
	dir := writeKernelToml(t, `
[plugins.CubeOracle]
address = "not-a-host-port"
`)

	if _, err := Load(dir); err == nil {
		t.Error("expected validation to reject an address without a port")
	}
}

func TestLoad_RejectsEmptyAddress(t *testing.T) {
	dir := writeKernelToml(t, `
[plugins.CubeOracle]
address = ""
`)

	if _, err := Load(dir); err == nil {
		t.Error("expected validation to reject an empty plugin address")
	}
}

func TestPluginTags(t *testing.T) {
	dir := writeKernelToml(t, `
[plugins.A]
address = "localhost:1"

[plugins.B]
address = "localhost:2"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.PluginTags()) != 2 {
		t.Errorf("PluginTags(): got %d, want 2", len(cfg.PluginTags()))
	}
}
