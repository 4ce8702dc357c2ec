package source

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RegistryConfig overrides per-source settings from a YAML file. Every field
// is optional; unset values keep the built-in defaults.
type RegistryConfig struct {
	Sources map[string]SourceConfig `yaml:"sources"`
}

// SourceConfig is the per-source override block.
type SourceConfig struct {
	BaseURL    string  `yaml:"base_url"`
	Rank       int     `yaml:"rank"`
	RatePerSec float64 `yaml:"rate_per_sec"`
	Burst      int     `yaml:"burst"`
	Disabled   bool    `yaml:"disabled"`
}

// LoadRegistryConfig reads source overrides from a YAML file.
// The YAML has a top-level "registry" key.
func LoadRegistryConfig(path string) (*RegistryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read registry config %s", path)
	}

	var wrapper struct {
		Registry RegistryConfig `yaml:"registry"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "source: parse registry config")
	}

	cfg := &wrapper.Registry
	if cfg.Sources == nil {
		cfg.Sources = map[string]SourceConfig{}
	}
	return cfg, nil
}

// Get returns the override block for a source name, zero-valued when absent.
func (c *RegistryConfig) Get(name string) SourceConfig {
	if c == nil {
		return SourceConfig{}
	}
	return c.Sources[name]
}

// apply fills unset override fields with the given defaults.
func (sc SourceConfig) apply(baseURL string, rank int, ratePerSec float64, burst int) (string, int, float64, int) {
	if sc.BaseURL != "" {
		baseURL = sc.BaseURL
	}
	if sc.Rank > 0 {
		rank = sc.Rank
	}
	if sc.RatePerSec > 0 {
		ratePerSec = sc.RatePerSec
	}
	if sc.Burst > 0 {
		burst = sc.Burst
	}
	return baseURL, rank, ratePerSec, burst
}
