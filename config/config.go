// Package config loads and validates kernel.toml, the configuration file
// describing which oracle plugins a treeutil invocation should know about
// and where the on-disk shape cache lives.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Config is the parsed contents of kernel.toml, grounded on
// manifest/manifest.go's Manifest shape (a TOML file loaded by directory,
// remembering where it came from for relative path resolution).
type Config struct {
	Cache   CacheConfig             `toml:"cache"`
	Plugins map[string]PluginConfig `toml:"plugins"`

	// Dir is the directory containing kernel.toml (set at load time).
	Dir string `toml:"-"`
}

// CacheConfig configures the on-disk shape cache (cache.Store).
type CacheConfig struct {
	Path string `toml:"path"`
}

// PluginConfig describes one oracle plugin registry entry.
type PluginConfig struct {
	Address string `toml:"address" json:"address"`
}

// pluginSchema constrains a kernel.toml's [plugins.*] entries: the map key
// (the plugin tag) is only checked to be non-empty, in Validate, so what's
// validated declaratively is that each entry's address looks like
// host:port, rather than hand-rolling that check field by field.
const pluginSchema = `
address: =~"^[^:]+:[0-9]+$"
`

// Load parses kernel.toml from dir and validates its plugin registry
// section against the embedded CUE schema.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "kernel.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	cfg.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if cfg.Cache.Path == "" {
		cfg.Cache.Path = filepath.Join(cfg.Dir, "shapes.db")
	} else if !filepath.IsAbs(cfg.Cache.Path) {
		cfg.Cache.Path = filepath.Join(cfg.Dir, cfg.Cache.Path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every [plugins.*] entry against pluginSchema using CUE,
// grounded on the pack's cuelang.org/go dependency: rather than hand-write a
// per-field checker, the schema is compiled once and each entry is unified
// against it, matching the "compile a constraint, evaluate values against
// it" style cuelang.org/go's own public cuecontext API is built for.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(pluginSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config: invalid embedded plugin schema: %w", err)
	}

	for tag, plugin := range c.Plugins {
		if tag == "" {
			return fmt.Errorf("config: plugin table has an empty tag")
		}

		val := ctx.Encode(plugin)
		unified := schema.Unify(val)
		if err := unified.Validate(cue.Concrete(true)); err != nil {
			return fmt.Errorf("config: plugin %q: %w", tag, err)
		}
	}
	return nil
}

// PluginTags returns the configured plugin tags in no particular order.
func (c *Config) PluginTags() []string {
	tags := make([]string, 0, len(c.Plugins))
	for tag := range c.Plugins {
		tags = append(tags, tag)
	}
	return tags
}
