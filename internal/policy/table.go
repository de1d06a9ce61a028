package policy

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Table is an ordered, immutable allow-list of compiled patterns. A name is
// allowed when any pattern matches it; order only affects which pattern
// Match reports.
type Table struct {
	patterns []Pattern
	res      []*regexp.Regexp
}

// New compiles patterns into a Table. The input slice is copied.
func New(patterns []Pattern) (*Table, error) {
	t := &Table{
		patterns: make([]Pattern, len(patterns)),
		res:      make([]*regexp.Regexp, len(patterns)),
	}
	copy(t.patterns, patterns)
	for i, p := range t.patterns {
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, &CompileError{Index: i, Expr: p.Expr, Err: err}
		}
		t.res[i] = re
	}
	return t, nil
}

// MustNew is like New but panics on an invalid pattern.
func MustNew(patterns []Pattern) *Table {
	t, err := New(patterns)
	if err != nil {
		panic(err)
	}
	return t
}

var defaultTable = sync.OnceValue(func() *Table { return MustNew(DefaultPatterns()) })

// Default returns the built-in workstation table.
func Default() *Table { return defaultTable() }

// Matches reports whether any pattern matches somewhere in name.
func (t *Table) Matches(name string) bool {
	_, ok := t.Match(name)
	return ok
}

// Match returns the first pattern that matches name.
func (t *Table) Match(name string) (Pattern, bool) {
	for i, re := range t.res {
		if re.MatchString(name) {
			return t.patterns[i], true
		}
	}
	return Pattern{}, false
}

// Patterns returns a copy of the table's patterns in order.
func (t *Table) Patterns() []Pattern {
	out := make([]Pattern, len(t.patterns))
	copy(out, t.patterns)
	return out
}

// Len is the number of patterns in the table.
func (t *Table) Len() int { return len(t.patterns) }

// With returns a new table with extra appended. t is left untouched.
func (t *Table) With(extra ...Pattern) (*Table, error) {
	if len(extra) == 0 {
		return t, nil
	}
	all := make([]Pattern, 0, len(t.patterns)+len(extra))
	all = append(all, t.patterns...)
	all = append(all, extra...)
	return New(all)
}

// Digest identifies the table's expressions and their order. Two tables with
// the same digest classify every name the same way.
func (t *Table) Digest() string {
	h := xxhash.New()
	for _, p := range t.patterns {
		_, _ = h.WriteString(p.Expr)
		_, _ = h.Write([]byte{0})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
