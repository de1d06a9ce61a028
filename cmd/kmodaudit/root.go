package kmodaudit

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagConfigFile   string
	flagPatterns     string
	flagNoColor      bool
	flagVerbose      bool
	flagInPlace      bool
	flagSuffix       string
	flagDryRun       bool
	flagFormat       string
	flagShowDisabled bool
	flagNoHistory    bool

	version = "0.1.0"

	logger = zap.NewNop()
)

// usageError marks failures that should print usage and exit 1 without
// touching any file.
type usageError struct {
	cmd *cobra.Command
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

// rootCmd audits a single config file when given one positional argument.
var rootCmd = &cobra.Command{
	Use:   "kmodaudit <config-file>",
	Short: "Turn every =m option in a kernel config into =y or \"is not set\"",
	Long: `kmodaudit rewrites a kernel .config so that no option is built as a module.
Options whose name matches the allow-list become built-in (=y); every other
=m option is disabled. All other lines are copied unchanged.

The result is written to <config-file>.audited by default. Older tooling
overwrote the input in place; pass --in-place for that behaviour. -o names an
explicit destination and always wins over in-place.

Each run that writes also appends a record to .kmodaudit_history.jsonl in the
config's directory. Pass --no-history or set "history: false" to skip it.
Run 'make olddefconfig' on the result to settle dependencies.`,
	Args:          exactlyOneConfig,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		l, err := newLogger(flagVerbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

// Execute runs the kmodaudit CLI. It should be called by the main package.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err == nil {
		return
	}
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(os.Stderr, "error:", ue.err)
		fmt.Fprint(os.Stderr, ue.cmd.UsageString())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(2)
}

func exactlyOneConfig(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return &usageError{cmd: cmd, err: fmt.Errorf("expected exactly one config file, got %d", len(args))}
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.DisableCaller = !verbose
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func init() {
	// Assigned here rather than in the literal to break the initialization
	// cycle rootCmd -> runAudit -> flagChanged -> rootCmd.
	rootCmd.RunE = runAudit

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{cmd: c, err: err}
	})

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigFile, "config", "", "tool config file (default: .kmodaudit.yml next to the audited file)")
	pf.StringVar(&flagPatterns, "patterns", "", "pattern file replacing the built-in allow-list")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging on stderr")
	pf.BoolVar(&flagInPlace, "in-place", false, "overwrite the input file instead of writing <file><suffix>")
	pf.StringVar(&flagSuffix, "suffix", "", "suffix for the derived output path (default .audited)")
	pf.BoolVar(&flagDryRun, "dry-run", false, "report what would change without writing")
	pf.StringVar(&flagFormat, "format", "", "report format: text|table|json (default text)")
	pf.BoolVar(&flagShowDisabled, "show-disabled", false, "also list disabled options")
	pf.BoolVar(&flagNoHistory, "no-history", false, "do not append to the run history")

	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write the audited config to this path")
	rootCmd.Flags().StringVar(&flagSummary, "summary", "", "write a JSON run summary to this path")
}
