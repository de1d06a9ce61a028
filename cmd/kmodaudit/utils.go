package kmodaudit

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/kmodaudit/kmodaudit/internal/kconfig"
)

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// pickBoolDefault is pickBool for settings that are on unless a config file
// turns them off.
func pickBoolDefault(def bool, local, global *bool) bool {
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return def
}

// flagChanged reports whether a persistent flag was set on the command line.
func flagChanged(name string) bool {
	f := rootCmd.PersistentFlags().Lookup(name)
	return f != nil && f.Changed
}

// stripPrefix accepts option names with or without CONFIG_.
func stripPrefix(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), kconfig.Prefix)
}

// writeSummary writes a JSON summary file for a run.
func writeSummary(path string, data map[string]any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func strPtr(s string) *string { return &s }
func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func boolPtr(v bool) *bool { return &v }
