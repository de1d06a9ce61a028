package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/kmodaudit/kmodaudit/internal/types"
)

type PrintOptions struct {
	NoColor bool
	// ShowDisabled also lists the options that were turned off.
	ShowDisabled bool
	// Explain returns the allow pattern that kept name, if any.
	Explain func(name string) string
}

var (
	keptStyle     = color.New(color.FgGreen, color.Bold)
	disabledStyle = color.New(color.FgYellow)
	pathStyle     = color.New(color.FgCyan, color.Bold)
)

func (o PrintOptions) paint(c *color.Color, s string) string {
	if o.NoColor {
		return s
	}
	return c.Sprint(s)
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// PrintText writes the console summary for one audited file.
func PrintText(w io.Writer, r types.Report, opts PrintOptions) {
	fmt.Fprintf(w, "Results for %s:\n", opts.paint(pathStyle, r.Path))
	fmt.Fprintf(w, "  Kept as =y:  %d\n", len(r.Kept))
	fmt.Fprintf(w, "  Disabled:    %d\n", len(r.Disabled))
	fmt.Fprintf(w, "  Total =m processed: %d\n", r.Processed())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Kept options:")
	for _, name := range sortedCopy(r.Kept) {
		fmt.Fprintf(w, "  %s  %s\n", opts.paint(keptStyle, "=y"), name)
	}
	if opts.ShowDisabled {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Disabled options:")
		for _, name := range sortedCopy(r.Disabled) {
			fmt.Fprintf(w, "  %s  %s\n", opts.paint(disabledStyle, "--"), name)
		}
	}
	printFooter(w, r)
}

func printFooter(w io.Writer, r types.Report) {
	switch {
	case r.DryRun:
		fmt.Fprintf(w, "\n(dry-run) would write %s\n", r.OutputPath)
	case r.Written:
		fmt.Fprintf(w, "\nWrote %s\n", r.OutputPath)
	case r.OutputPath != "":
		fmt.Fprintf(w, "\nNo changes needed for %s\n", r.OutputPath)
	}
}

// PrintTable renders every classified option as a bordered table, kept
// options first.
func PrintTable(w io.Writer, r types.Report, opts PrintOptions) error {
	fmt.Fprintf(w, "Results for %s: %d kept, %d disabled, %d processed\n",
		r.Path, len(r.Kept), len(r.Disabled), r.Processed())
	if r.Processed() == 0 {
		fmt.Fprintln(w, "No module options found")
		printFooter(w, r)
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("OPTION", "RESULT", "PATTERN")
	for _, name := range sortedCopy(r.Kept) {
		pat := ""
		if opts.Explain != nil {
			pat = opts.Explain(name)
		}
		if err := table.Append([]string{name, "=y", pat}); err != nil {
			return err
		}
	}
	if opts.ShowDisabled {
		for _, name := range sortedCopy(r.Disabled) {
			if err := table.Append([]string{name, "is not set", ""}); err != nil {
				return err
			}
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	printFooter(w, r)
	return nil
}

// WriteJSON emits reports as an indented JSON array.
func WriteJSON(w io.Writer, reports []types.Report) error {
	if reports == nil {
		reports = []types.Report{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

// PrintBatch summarizes several audits, one row per file.
func PrintBatch(w io.Writer, reports []types.Report, skipped []string) error {
	if len(reports) == 0 && len(skipped) == 0 {
		fmt.Fprintln(w, "No config files matched")
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("PATH", "KEPT", "DISABLED", "OUTPUT")
	kept, disabled := 0, 0
	for _, r := range reports {
		kept += len(r.Kept)
		disabled += len(r.Disabled)
		out := r.OutputPath
		if r.DryRun {
			out += " (dry-run)"
		}
		row := []string{r.Path, fmt.Sprint(len(r.Kept)), fmt.Sprint(len(r.Disabled)), out}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	for _, p := range skipped {
		if err := table.Append([]string{p, "-", "-", "unchanged since last audit"}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Files: %d audited, %d skipped; options: %d kept, %d disabled\n",
		len(reports), len(skipped), kept, disabled)
	return nil
}
