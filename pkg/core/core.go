package core

import (
	"github.com/kmodaudit/kmodaudit/internal/auditor"
	"github.com/kmodaudit/kmodaudit/internal/policy"
	"github.com/kmodaudit/kmodaudit/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type Report = types.Report
type Options = auditor.Options
type Pattern = policy.Pattern

// Audit rewrites the config at path with the built-in allow-list. With zero
// Options the result goes to path + ".audited".
func Audit(path string, opts Options) (Report, error) {
	return auditor.New(policy.Default(), nil).AuditFile(path, opts)
}

// AuditWith is Audit with a caller-supplied allow-list. The patterns are
// compiled before the file is opened.
func AuditWith(path string, patterns []Pattern, opts Options) (Report, error) {
	tbl, err := policy.New(patterns)
	if err != nil {
		return Report{}, err
	}
	return auditor.New(tbl, nil).AuditFile(path, opts)
}

// Apply transforms config text in memory with the built-in allow-list.
func Apply(data []byte) ([]byte, Report) {
	return auditor.New(policy.Default(), nil).Apply(data)
}

// DefaultPatterns returns a copy of the built-in allow-list.
func DefaultPatterns() []Pattern { return policy.DefaultPatterns() }
