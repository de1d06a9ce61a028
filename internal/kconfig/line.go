package kconfig

import (
	"regexp"

	"github.com/kmodaudit/kmodaudit/internal/types"
)

// Prefix is the fixed token every option name carries in a config file.
const Prefix = "CONFIG_"

// moduleLine matches CONFIG_<name>=m with optional trailing whitespace,
// which includes the line's own terminator. Trailing whitespace follows the
// Unicode definition rather than RE2's ASCII \s; names stay ASCII.
var moduleLine = regexp.MustCompile(`^(` + Prefix + `)(\w+)=m[\s\v\x1c-\x1f\x{85}\p{Z}]*$`)

// Matcher decides whether a bare option name is promoted to built-in.
type Matcher interface {
	Matches(name string) bool
}

// Result is the rewritten form of one input line.
type Result struct {
	Output  string
	Outcome types.Outcome
	// Name is the bare option name; empty for unchanged lines.
	Name string
}

// Transform classifies one line and rewrites it. Module lines come back with
// a "\n" terminator; every other line is returned exactly as given.
func Transform(line string, m Matcher) Result {
	sub := moduleLine.FindStringSubmatch(line)
	if sub == nil {
		return Result{Output: line, Outcome: types.Unchanged}
	}
	prefix, name := sub[1], sub[2]
	if m.Matches(name) {
		return Result{Output: prefix + name + "=y\n", Outcome: types.Kept, Name: name}
	}
	return Result{Output: "# " + prefix + name + " is not set\n", Outcome: types.Disabled, Name: name}
}

// IsModuleLine reports whether line would be rewritten by Transform.
func IsModuleLine(line string) bool {
	return moduleLine.MatchString(line)
}
