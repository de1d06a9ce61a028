package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for kmodaudit.
type FileConfig struct {
	// Patterns points at a pattern file replacing (or extending) the
	// built-in allow-list. Relative paths resolve against the config file.
	Patterns      *string  `yaml:"patterns,omitempty"`
	ExtraPatterns []string `yaml:"extra_patterns,omitempty"`
	InPlace       *bool    `yaml:"in_place,omitempty"`
	Suffix        *string  `yaml:"suffix,omitempty"`
	Format        *string  `yaml:"format,omitempty"`
	NoColor       *bool    `yaml:"no_color,omitempty"`
	History       *bool    `yaml:"history,omitempty"`
	ShowDisabled  *bool    `yaml:"show_disabled,omitempty"`
}

// LocalNames are searched in order next to the audited file.
var LocalNames = []string{".kmodaudit.yml", ".kmodaudit.yaml", "kmodaudit.yml", "kmodaudit.yaml"}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Patterns != nil && *cfg.Patterns != "" && !filepath.IsAbs(*cfg.Patterns) {
		resolved := filepath.Join(filepath.Dir(path), *cfg.Patterns)
		cfg.Patterns = &resolved
	}
	return cfg, nil
}

// LoadLocal searches dir for a local config file.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, errors.New("no config dir")
	}
	p := filepath.Join(base, "kmodaudit", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// Write stores cfg as YAML at path.
func Write(path string, cfg FileConfig) error {
	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
