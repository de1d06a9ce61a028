package kmodaudit

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/kmodaudit/kmodaudit/internal/auditor"
	"github.com/kmodaudit/kmodaudit/internal/config"
	"github.com/kmodaudit/kmodaudit/internal/policy"
)

// settings is the merged view of flags, local and global config for a run.
type settings struct {
	patternsFile string
	extra        []string
	inPlace      bool
	output       string
	suffix       string
	dryRun       bool
	format       string
	noColor      bool
	history      bool
	showDisabled bool
}

func (s settings) options() auditor.Options {
	return auditor.Options{
		InPlace: s.inPlace,
		Output:  s.output,
		Suffix:  s.suffix,
		DryRun:  s.dryRun,
	}
}

// resolveSettings loads configs (CLI > local > global). dir is where the
// local config is searched for; --config replaces the local lookup.
func resolveSettings(dir string) (settings, error) {
	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	if flagConfigFile != "" {
		c, err := config.LoadFile(flagConfigFile)
		if err != nil {
			return settings{}, fmt.Errorf("load config %s: %w", flagConfigFile, err)
		}
		lcfg = c
	} else if c, err := config.LoadLocal(dir); err == nil {
		lcfg = c
	}

	s := settings{
		patternsFile: pickString(flagPatterns, lcfg.Patterns, gcfg.Patterns),
		extra:        append(append([]string(nil), gcfg.ExtraPatterns...), lcfg.ExtraPatterns...),
		inPlace:      pickBool(false, lcfg.InPlace, gcfg.InPlace),
		output:       flagOutput,
		suffix:       pickString(flagSuffix, lcfg.Suffix, gcfg.Suffix),
		dryRun:       flagDryRun,
		format:       pickString(flagFormat, lcfg.Format, gcfg.Format),
		noColor:      pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor),
		history:      pickBoolDefault(true, lcfg.History, gcfg.History) && !flagNoHistory,
		showDisabled: pickBool(flagShowDisabled, lcfg.ShowDisabled, gcfg.ShowDisabled),
	}
	// an explicit --in-place=false beats a config file, and -o beats both
	if flagChanged("in-place") {
		s.inPlace = flagInPlace
	}
	if s.output != "" {
		s.inPlace = false
	}
	if s.format == "" {
		s.format = "text"
	}
	switch s.format {
	case "text", "table", "json":
	default:
		return s, fmt.Errorf("unknown format %q (want text, table or json)", s.format)
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		s.noColor = true
	}
	return s, nil
}

// buildTable compiles the allow-list for a run. It must succeed before any
// config file is opened.
func buildTable(s settings) (*policy.Table, error) {
	patterns := policy.DefaultPatterns()
	if s.patternsFile != "" {
		loaded, err := policy.LoadFile(s.patternsFile)
		if err != nil {
			return nil, fmt.Errorf("load patterns: %w", err)
		}
		patterns = loaded
	}
	for _, expr := range s.extra {
		patterns = append(patterns, policy.Pattern{Expr: expr, Group: "extra"})
	}
	tbl, err := policy.New(patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid allow-list: %w", err)
	}
	logger.Debug("allow-list ready",
		zap.Int("patterns", tbl.Len()),
		zap.String("digest", tbl.Digest()),
		zap.String("source", patternSource(s)))
	return tbl, nil
}

func patternSource(s settings) string {
	if s.patternsFile != "" {
		return s.patternsFile
	}
	return "built-in"
}
