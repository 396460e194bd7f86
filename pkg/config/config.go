package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FailBit identifies one scan chain position that captured an unexpected
// value, together with the pattern indices it failed on.
type FailBit struct {
	Chain        string `yaml:"chain"`
	Cell         int    `yaml:"cell"`
	FailPatterns []int  `yaml:"failpatterns"`
}

// Config describes one backcone extraction job.
type Config struct {
	Name        string    `yaml:"name"`
	FlatModel   string    `yaml:"flatmodel"`
	PatDB       string    `yaml:"patdb"`
	BinPat      string    `yaml:"binpat"`
	FailBits    []FailBit `yaml:"failbits"`
	DefectSites []string  `yaml:"defectsites"`
}

// Load reads and validates a YAML job description.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("config %s: missing name", path)
	}
	if cfg.FlatModel == "" {
		return nil, fmt.Errorf("config %s: missing flatmodel", path)
	}
	if len(cfg.FailBits) == 0 {
		return nil, fmt.Errorf("config %s: no failbits", path)
	}
	return &cfg, nil
}

// PatternFile picks the binary pattern file when it exists, falling back
// to the pattern database.
func (c *Config) PatternFile() string {
	if c.BinPat != "" {
		if _, err := os.Stat(c.BinPat); err == nil {
			return c.BinPat
		}
	}
	return c.PatDB
}
