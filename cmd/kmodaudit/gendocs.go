package kmodaudit

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kmodaudit/kmodaudit/internal/policy"
)

const (
	docsBegin = "<!-- BEGIN:DEFAULT_PATTERNS -->"
	docsEnd   = "<!-- END:DEFAULT_PATTERNS -->"
)

// gendocs regenerates the built-in allow-list section in README.md between
// the DEFAULT_PATTERNS markers.
func init() {
	cmd := &cobra.Command{
		Use:    "gendocs [readme]",
		Short:  "Regenerate the README allow-list section",
		Args:   cobra.MaximumNArgs(1),
		Hidden: true,
		RunE: func(_ *cobra.Command, args []string) error {
			path := "README.md"
			if len(args) == 1 {
				path = args[0]
			}
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			nb, err := spliceDocs(b, patternDocs(policy.DefaultPatterns()))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return os.WriteFile(path, nb, 0644)
		},
	}
	rootCmd.AddCommand(cmd)
}

// patternDocs renders patterns as a markdown list, one bullet per group in
// table order.
func patternDocs(patterns []policy.Pattern) string {
	var out strings.Builder
	out.WriteString("\nBuilt-in allow-list (run `kmodaudit patterns list` for notes and scope):\n\n")
	var order []string
	byGroup := map[string][]string{}
	for _, p := range patterns {
		g := p.Group
		if g == "" {
			g = "other"
		}
		if _, ok := byGroup[g]; !ok {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], "`"+p.Expr+"`")
	}
	for _, g := range order {
		out.WriteString("- " + g + ": " + strings.Join(byGroup[g], ", ") + "\n")
	}
	return out.String()
}

func spliceDocs(b []byte, section string) ([]byte, error) {
	i := bytes.Index(b, []byte(docsBegin))
	j := bytes.Index(b, []byte(docsEnd))
	if i < 0 || j < 0 || j <= i {
		return nil, fmt.Errorf("markers not found")
	}
	var nb bytes.Buffer
	nb.Write(b[:i])
	nb.WriteString(docsBegin)
	nb.WriteString("\n")
	nb.WriteString(section)
	nb.Write(b[j:])
	return nb.Bytes(), nil
}
