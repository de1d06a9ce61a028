package kmodaudit

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kmodaudit/kmodaudit/internal/auditor"
	"github.com/kmodaudit/kmodaudit/internal/watch"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch <config-file>",
		Short: "Re-audit a config every time it is saved",
		Long: `watch audits the file once, then again after every write until interrupted.
With --in-place the rewrite itself triggers one more pass, which finds
nothing left to change and does not write.`,
		Args: exactlyOneConfig,
		RunE: runWatch,
	}
	rootCmd.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	s, err := resolveSettings(filepath.Dir(abs))
	if err != nil {
		return err
	}
	tbl, err := buildTable(s)
	if err != nil {
		return err
	}
	a := auditor.New(tbl, logger)

	pass := func() error {
		rep, err := auditOne(a, tbl, path, s)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), rep, s, tbl)
	}
	if err := pass(); err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch.Watch(ctx, path, logger, pass)
}
