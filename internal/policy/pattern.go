package policy

import (
	"fmt"
	"strings"
)

// Pattern is one allow-list entry. Expr is matched against the bare option
// name, i.e. without the CONFIG_ prefix.
type Pattern struct {
	Expr  string `yaml:"expr" json:"expr"`
	Group string `yaml:"group,omitempty" json:"group,omitempty"`
	Note  string `yaml:"note,omitempty" json:"note,omitempty"`
}

// Family reports whether the pattern is left open at the end, so that every
// option sharing its prefix is captured (e.g. ^NF_ keeps all of netfilter).
func (p Pattern) Family() bool {
	return !strings.HasSuffix(p.Expr, "$")
}

// Anchored reports whether the pattern is pinned to the start of the name.
func (p Pattern) Anchored() bool {
	return strings.HasPrefix(p.Expr, "^")
}

// CompileError is returned when a table entry is not a valid expression.
type CompileError struct {
	Index int
	Expr  string
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("pattern %d (%q): %v", e.Index, e.Expr, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }
