// Package config loads hamlint configuration from `.hamlint.hcl` or
// `.hamlint.yaml` files.
package config

import (
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Config controls which files are linted and how filters are treated.
type Config struct {
	// Include are doublestar globs of files to lint, relative to the root.
	Include []string `hcl:"include,optional" yaml:"include,omitempty"`
	// Exclude are globs removed from the include set.
	Exclude []string `hcl:"exclude,optional" yaml:"exclude,omitempty"`
	// RubyFilters are the filter types whose bodies are Ruby and get
	// verbatim, line-preserving extraction. Which filters qualify is
	// policy that shifts with the HAML ecosystem, so it lives here rather
	// than in the extractor.
	RubyFilters []string `hcl:"ruby_filters,optional" yaml:"ruby_filters,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Include:     []string{"**/*.haml"},
		RubyFilters: []string{"ruby"},
	}
}

// Load reads a config file, choosing the format by extension: YAML for
// .yaml/.yml, HCL otherwise. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg Config

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Errorf("parsing yaml config %s: %w", path, err)
		}
	} else {
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCL(data, path)
		if diags.HasErrors() {
			return nil, errors.Errorf("parsing hcl config %s: %w", path, diags)
		}
		if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
			return nil, errors.Errorf("decoding hcl config %s: %w", path, diags)
		}
	}

	defaults := Default()
	if len(cfg.Include) == 0 {
		cfg.Include = defaults.Include
	}
	if cfg.RubyFilters == nil {
		cfg.RubyFilters = defaults.RubyFilters
	}
	return &cfg, nil
}

// IsRubyFilter reports whether a filter type's content is Ruby.
func (c *Config) IsRubyFilter(filterType string) bool {
	for _, name := range c.RubyFilters {
		if name == filterType {
			return true
		}
	}
	return false
}
