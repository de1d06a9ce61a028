package kmodaudit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kmodaudit/kmodaudit/internal/auditor"
	"github.com/kmodaudit/kmodaudit/internal/cache"
	"github.com/kmodaudit/kmodaudit/internal/config"
	"github.com/kmodaudit/kmodaudit/internal/files"
	"github.com/kmodaudit/kmodaudit/internal/policy"
	"github.com/kmodaudit/kmodaudit/internal/runlog"
)

var (
	cfgOutput   string
	cfgInPlace  bool
	cfgSuffix   string
	cfgFormat   string
	cfgPatterns string
	cfgExtra    string
	cfgForce    bool
	cfgIgnore   bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .kmodaudit.yml with the selected options",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".kmodaudit.yml", "output file path")
	initCmd.Flags().BoolVar(&cfgInPlace, "in-place", false, "overwrite audited configs by default")
	initCmd.Flags().StringVar(&cfgSuffix, "suffix", "", "suffix for derived output paths")
	initCmd.Flags().StringVar(&cfgFormat, "format", "text", "default report format: text|table|json")
	initCmd.Flags().StringVar(&cfgPatterns, "patterns", "", "pattern file to use instead of the built-in list")
	initCmd.Flags().StringVar(&cfgExtra, "extra", "", "comma-separated extra allow patterns")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&cfgIgnore, "gitignore", false, "add generated outputs, history and cache to .gitignore next to the config")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(cfgOutput); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to replace it)", cfgOutput)
	}
	var extra []string
	for _, e := range strings.Split(cfgExtra, ",") {
		if e = strings.TrimSpace(e); e != "" {
			extra = append(extra, e)
		}
	}
	// reject bad expressions now rather than at the first audit
	for i, e := range extra {
		if _, err := policy.New([]policy.Pattern{{Expr: e}}); err != nil {
			return fmt.Errorf("extra pattern %d: %w", i+1, err)
		}
	}

	fc := config.FileConfig{
		Patterns:      optStrPtr(cfgPatterns),
		ExtraPatterns: extra,
		InPlace:       boolPtr(cfgInPlace),
		Suffix:        optStrPtr(cfgSuffix),
		Format:        strPtr(cfgFormat),
		History:       boolPtr(true),
	}
	if err := config.Write(cfgOutput, fc); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)

	if cfgIgnore {
		suffix := auditor.DefaultSuffix
		switch {
		case cfgInPlace:
			suffix = ""
		case strings.TrimSpace(cfgSuffix) != "":
			suffix = strings.TrimSpace(cfgSuffix)
		}
		added, err := files.AppendIgnore(filepath.Dir(cfgOutput),
			files.GeneratedIgnores(suffix, runlog.FileName, cache.FileName)...)
		if err != nil {
			return fmt.Errorf("update .gitignore: %w", err)
		}
		if len(added) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Ignored", strings.Join(added, " "))
		}
	}
	return nil
}
