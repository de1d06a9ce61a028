package kmodaudit

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kmodaudit/kmodaudit/internal/kconfig"
	"github.com/kmodaudit/kmodaudit/internal/policy"
)

func init() {
	cmd := &cobra.Command{Use: "patterns", Short: "Inspect the allow-list"}
	rootCmd.AddCommand(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show every allow pattern in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tbl, err := activeTable()
			if err != nil {
				return err
			}
			return listPatterns(cmd.OutOrStdout(), tbl)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "explain <option>...",
		Short: "Show what an =m option would become and which pattern decides it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := activeTable()
			if err != nil {
				return err
			}
			explain(cmd.OutOrStdout(), tbl, args)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write the active allow-list as a pattern file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := activeTable()
			if err != nil {
				return err
			}
			if err := policy.WriteFile(args[0], tbl.Patterns()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", args[0])
			return nil
		},
	})
}

func activeTable() (*policy.Table, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	s, err := resolveSettings(cwd)
	if err != nil {
		return nil, err
	}
	return buildTable(s)
}

func listPatterns(w io.Writer, tbl *policy.Table) error {
	table := tablewriter.NewWriter(w)
	table.Header("#", "GROUP", "PATTERN", "SCOPE", "NOTE")
	for i, p := range tbl.Patterns() {
		scope := "exact"
		if p.Family() {
			scope = "family"
		}
		if err := table.Append([]string{strconv.Itoa(i + 1), p.Group, p.Expr, scope, p.Note}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d patterns\n", tbl.Len())
	return nil
}

func explain(w io.Writer, tbl *policy.Table, names []string) {
	for _, raw := range names {
		name := stripPrefix(raw)
		if p, ok := tbl.Match(name); ok {
			fmt.Fprintf(w, "%s%s=y\t(%s, group %s)\n", kconfig.Prefix, name, p.Expr, p.Group)
			continue
		}
		fmt.Fprintf(w, "# %s%s is not set\t(no pattern matches)\n", kconfig.Prefix, name)
	}
}
