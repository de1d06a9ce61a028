package policy

import (
	"fmt"
	"os"

	"github.com/blang/semver/v4"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is written into exported pattern files.
const SchemaVersion = "1.0.0"

var supportedSchemas = semver.MustParseRange(">=1.0.0 <2.0.0")

// File is the on-disk YAML shape of a pattern file.
type File struct {
	Schema          string    `yaml:"schema"`
	InheritDefaults bool      `yaml:"inherit_defaults"`
	Patterns        []Pattern `yaml:"patterns"`
}

// LoadFile reads a pattern file and returns the resolved pattern list. When
// the file inherits defaults, its patterns follow the built-in ones.
func LoadFile(path string) ([]Pattern, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Schema == "" {
		return nil, fmt.Errorf("%s: missing schema version", path)
	}
	v, err := semver.ParseTolerant(f.Schema)
	if err != nil {
		return nil, fmt.Errorf("%s: schema %q: %w", path, f.Schema, err)
	}
	if !supportedSchemas(v) {
		return nil, fmt.Errorf("%s: unsupported schema %s", path, v)
	}
	if !f.InheritDefaults {
		return f.Patterns, nil
	}
	return append(DefaultPatterns(), f.Patterns...), nil
}

// WriteFile exports patterns as a standalone pattern file.
func WriteFile(path string, patterns []Pattern) error {
	b, err := yaml.Marshal(File{Schema: SchemaVersion, Patterns: patterns})
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
