package kmodaudit

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kmodaudit/kmodaudit/internal/runlog"
)

var flagHistoryLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history [dir]",
		Short: "List previous audits recorded next to the configs in dir",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			records, err := runlog.New(dir).Load()
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					fmt.Fprintln(cmd.OutOrStdout(), "No audits recorded in", dir)
					return nil
				}
				return err
			}
			return printHistory(cmd.OutOrStdout(), records, flagHistoryLimit)
		},
	}
	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "show at most this many runs (0 = all)")
	rootCmd.AddCommand(cmd)
}

func printHistory(w io.Writer, records []runlog.Record, limit int) error {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	table := tablewriter.NewWriter(w)
	table.Header("WHEN", "PATH", "KEPT", "DISABLED", "OUTPUT", "TOOK")
	for _, r := range records {
		out := r.OutputPath
		if !r.Written {
			out += " (unchanged)"
		}
		row := []string{
			r.Timestamp.Local().Format(time.DateTime),
			r.Path,
			strconv.Itoa(r.Kept),
			strconv.Itoa(r.Disabled),
			out,
			r.Duration,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
