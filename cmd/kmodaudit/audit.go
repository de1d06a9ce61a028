package kmodaudit

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kmodaudit/kmodaudit/internal/auditor"
	"github.com/kmodaudit/kmodaudit/internal/policy"
	"github.com/kmodaudit/kmodaudit/internal/report"
	"github.com/kmodaudit/kmodaudit/internal/runlog"
	"github.com/kmodaudit/kmodaudit/internal/types"
)

var (
	flagOutput  string
	flagSummary string
)

func runAudit(cmd *cobra.Command, args []string) error {
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

	rep, err := auditOne(auditor.New(tbl, logger), tbl, path, s)
	if err != nil {
		return err
	}
	if err := render(cmd.OutOrStdout(), rep, s, tbl); err != nil {
		return err
	}
	if flagSummary != "" {
		if err := writeSummary(flagSummary, map[string]any{
			"action":    "audit",
			"path":      rep.Path,
			"output":    rep.OutputPath,
			"kept":      len(rep.Kept),
			"disabled":  len(rep.Disabled),
			"written":   rep.Written,
			"dry_run":   rep.DryRun,
			"patterns":  tbl.Len(),
			"timestamp": time.Now().Format(time.RFC3339),
		}); err != nil {
			logger.Warn("could not write summary", zap.String("path", flagSummary), zap.Error(err))
		}
	}
	return nil
}

// auditOne runs the auditor on path and records the run in the history log.
func auditOne(a *auditor.Auditor, tbl *policy.Table, path string, s settings) (types.Report, error) {
	start := time.Now()
	rep, err := a.AuditFile(path, s.options())
	if err != nil {
		logger.Error("audit failed", zap.String("path", path), zap.Error(err))
		return rep, err
	}
	if s.history && !rep.DryRun {
		log := runlog.New(filepath.Dir(path))
		if err := log.Append(runlog.NewRecord(rep, tbl.Len(), time.Since(start))); err != nil {
			logger.Warn("could not record run", zap.String("log", log.Path()), zap.Error(err))
		}
	}
	return rep, nil
}

func render(w io.Writer, rep types.Report, s settings, tbl *policy.Table) error {
	opts := report.PrintOptions{
		NoColor:      s.noColor,
		ShowDisabled: s.showDisabled,
		Explain: func(name string) string {
			if p, ok := tbl.Match(name); ok {
				return p.Expr
			}
			return ""
		},
	}
	switch s.format {
	case "json":
		return report.WriteJSON(w, []types.Report{rep})
	case "table":
		return report.PrintTable(w, rep, opts)
	case "text":
		report.PrintText(w, rep, opts)
		return nil
	default:
		return fmt.Errorf("unknown format %q", s.format)
	}
}
