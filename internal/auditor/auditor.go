package auditor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/kmodaudit/kmodaudit/internal/kconfig"
	"github.com/kmodaudit/kmodaudit/internal/types"
)

// DefaultSuffix is appended to the input path when no output is given and
// the audit is not in place.
const DefaultSuffix = ".audited"

// Options controls where an audited file is written.
type Options struct {
	// InPlace overwrites the input file unless Output is set.
	InPlace bool
	// Output is an explicit destination path.
	Output string
	// Suffix derives the destination from the input path; DefaultSuffix if empty.
	Suffix string
	// DryRun computes the report without writing anything.
	DryRun bool
}

// OutputPath resolves the destination for path under opts.
func (o Options) OutputPath(path string) string {
	switch {
	case o.Output != "":
		return o.Output
	case o.InPlace:
		return path
	case o.Suffix != "":
		return path + o.Suffix
	default:
		return path + DefaultSuffix
	}
}

// Auditor rewrites kernel configs against an allow-list.
type Auditor struct {
	matcher kconfig.Matcher
	logger  *zap.Logger
}

// New returns an Auditor backed by m. A nil logger disables logging.
func New(m kconfig.Matcher, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{matcher: m, logger: logger}
}

// Apply transforms a whole config held in memory. The returned report has no
// paths set.
func (a *Auditor) Apply(data []byte) ([]byte, types.Report) {
	lines := kconfig.SplitLines(data)
	rep := types.Report{
		Kept:     []string{},
		Disabled: []string{},
		Lines:    len(lines),
	}
	var out bytes.Buffer
	out.Grow(len(data))
	for _, ln := range lines {
		r := kconfig.Transform(ln, a.matcher)
		switch r.Outcome {
		case types.Kept:
			rep.Kept = append(rep.Kept, r.Name)
		case types.Disabled:
			rep.Disabled = append(rep.Disabled, r.Name)
		}
		out.WriteString(r.Output)
	}
	result := out.Bytes()
	rep.InputHash = Fingerprint(data)
	rep.OutputHash = Fingerprint(result)
	rep.Changed = !bytes.Equal(data, result)
	return result, rep
}

// AuditFile reads path, rewrites it and writes the result according to opts.
// The input handle is closed before anything is written, so an in-place run
// truncates and rewrites the same file. Nothing is staged in a temp file.
func (a *Auditor) AuditFile(path string, opts Options) (types.Report, error) {
	data, mode, err := readConfig(path)
	if err != nil {
		return types.Report{}, err
	}
	out, rep := a.Apply(data)
	rep.Path = path
	rep.OutputPath = opts.OutputPath(path)
	rep.DryRun = opts.DryRun

	log := a.logger.With(zap.String("path", path), zap.String("output", rep.OutputPath))
	log.Debug("audited config",
		zap.Int("lines", rep.Lines),
		zap.Int("kept", len(rep.Kept)),
		zap.Int("disabled", len(rep.Disabled)),
		zap.Bool("changed", rep.Changed))

	switch {
	case opts.DryRun:
		return rep, nil
	case rep.OutputPath == path && !rep.Changed:
		log.Debug("in-place audit is a no-op, skipping write")
		return rep, nil
	}
	if err := os.WriteFile(rep.OutputPath, out, mode); err != nil {
		return rep, fmt.Errorf("write %s: %w", rep.OutputPath, err)
	}
	rep.Written = true
	log.Info("wrote audited config")
	return rep, nil
}

func readConfig(path string) ([]byte, os.FileMode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return nil, 0, fmt.Errorf("%s is a directory", path)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	return data, st.Mode().Perm(), nil
}

// Fingerprint is the hex xxhash64 of b, used to compare config contents.
func Fingerprint(b []byte) string {
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}
