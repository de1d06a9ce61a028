package kmodaudit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/kmodaudit/kmodaudit/internal/auditor"
	"github.com/kmodaudit/kmodaudit/internal/cache"
	"github.com/kmodaudit/kmodaudit/internal/policy"
	"github.com/kmodaudit/kmodaudit/internal/report"
	"github.com/kmodaudit/kmodaudit/internal/runlog"
	"github.com/kmodaudit/kmodaudit/internal/types"
)

var (
	flagNoCache   bool
	flagCacheRoot string
)

func init() {
	cmd := &cobra.Command{
		Use:   "batch <glob>...",
		Short: "Audit every config matching the given globs",
		Example: `  kmodaudit batch 'profiles/**/*.config'
  kmodaudit batch --in-place --no-cache boards/*/.config`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatch,
	}
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "audit every file even if it is unchanged since the last run")
	cmd.Flags().StringVar(&flagCacheRoot, "cache-root", ".", "directory holding the batch cache")
	rootCmd.AddCommand(cmd)
}

// expandGlobs resolves doublestar patterns to a sorted, de-duplicated file list.
func expandGlobs(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, pat := range patterns {
		matches, err := doublestar.FilepathGlob(pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pat, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// generatedBy reports whether f is a file kmodaudit itself writes under s:
// a derived output, the run log or the batch cache.
func generatedBy(f string, s settings) bool {
	switch filepath.Base(f) {
	case runlog.FileName, cache.FileName:
		return true
	}
	if s.inPlace {
		return false
	}
	if s.output != "" {
		a, errA := filepath.Abs(f)
		b, errB := filepath.Abs(s.output)
		if errA == nil && errB == nil && a == b {
			return true
		}
	}
	suffix := s.suffix
	if suffix == "" {
		suffix = auditor.DefaultSuffix
	}
	return strings.HasSuffix(f, suffix)
}

// cacheKey ties a file's current content to the allow-list that produced it.
func cacheKey(content []byte, tbl *policy.Table) string {
	return auditor.Fingerprint(content) + "/" + tbl.Digest()
}

// upToDate reports whether auditing path again would reproduce what the
// last batch run already wrote.
func upToDate(db cache.DB, abs string, s settings, tbl *policy.Table) bool {
	data, err := os.ReadFile(abs)
	if err != nil {
		return false
	}
	if !db.Fresh(abs, cacheKey(data, tbl)) {
		return false
	}
	if s.inPlace {
		return true
	}
	_, err = os.Stat(s.options().OutputPath(abs))
	return err == nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	s, err := resolveSettings(cwd)
	if err != nil {
		return err
	}
	tbl, err := buildTable(s)
	if err != nil {
		return err
	}
	matched, err := expandGlobs(args)
	if err != nil {
		return err
	}
	var files []string
	for _, f := range matched {
		if generatedBy(f, s) {
			logger.Debug("skipping generated file", zap.String("path", f))
			continue
		}
		files = append(files, f)
	}

	root, err := filepath.Abs(flagCacheRoot)
	if err != nil {
		return err
	}
	db, err := cache.Load(root)
	if err != nil && !os.IsNotExist(err) {
		logger.Warn("ignoring unreadable cache", zap.String("root", root), zap.Error(err))
	}

	var bar *progressbar.ProgressBar
	if len(files) > 1 && s.format != "json" && term.IsTerminal(int(os.Stderr.Fd())) {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("auditing"),
			progressbar.OptionEnableColorCodes(!s.noColor),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	a := auditor.New(tbl, logger)
	var reports []types.Report
	var skipped []string
	failed := 0
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		if !flagNoCache && upToDate(db, abs, s, tbl) {
			logger.Debug("unchanged since last audit", zap.String("path", f))
			skipped = append(skipped, f)
		} else if rep, err := auditOne(a, tbl, f, s); err != nil {
			failed++
		} else {
			reports = append(reports, rep)
			if !rep.DryRun {
				// in place, the file now holds the output; otherwise the input is what we saw
				content := rep.InputHash
				if s.inPlace {
					content = rep.OutputHash
				}
				db.Entries[abs] = content + "/" + tbl.Digest()
			}
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if !flagNoCache && !s.dryRun {
		if err := cache.Save(root, db); err != nil {
			logger.Warn("could not save cache", zap.String("root", root), zap.Error(err))
		}
	}

	if s.format == "json" {
		err = report.WriteJSON(cmd.OutOrStdout(), reports)
	} else {
		err = report.PrintBatch(cmd.OutOrStdout(), reports, skipped)
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}
