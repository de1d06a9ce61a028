package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kmodaudit/kmodaudit/internal/types"
)

// FileName is the JSONL history kept next to audited configs.
const FileName = ".kmodaudit_history.jsonl"

type Record struct {
	Timestamp  time.Time `json:"timestamp"`
	RunID      string    `json:"run_id"`
	Path       string    `json:"path"`
	OutputPath string    `json:"output_path"`
	Kept       int       `json:"kept"`
	Disabled   int       `json:"disabled"`
	Lines      int       `json:"lines"`
	InputHash  string    `json:"input_hash"`
	OutputHash string    `json:"output_hash"`
	Written    bool      `json:"written"`
	DryRun     bool      `json:"dry_run,omitempty"`
	Patterns   int       `json:"patterns"`
	Duration   string    `json:"duration"`
	// KeptNames is capped to keep records small; see MaxNames.
	KeptNames []string `json:"kept_names,omitempty"`
}

// MaxNames bounds KeptNames in each record.
const MaxNames = 50

type Log struct {
	path string
}

// New returns the history log for configs living in dir.
func New(dir string) *Log {
	return &Log{path: filepath.Join(dir, FileName)}
}

// Path is the location of the JSONL file.
func (l *Log) Path() string { return l.path }

// Load returns all records, newest first. Reading stops at the first
// malformed record.
func (l *Log) Load() ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()

	var records []Record
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record Record
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Append writes one record to the end of the log.
func (l *Log) Append(record Record) error {
	if record.RunID == "" {
		record.RunID = fmt.Sprintf("run_%d", time.Now().UnixNano())
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}
	return nil
}

// NewRecord builds a record from an audit report.
func NewRecord(r types.Report, patterns int, duration time.Duration) Record {
	names := r.Kept
	if len(names) > MaxNames {
		names = names[:MaxNames]
	}
	return Record{
		Timestamp:  time.Now(),
		Path:       r.Path,
		OutputPath: r.OutputPath,
		Kept:       len(r.Kept),
		Disabled:   len(r.Disabled),
		Lines:      r.Lines,
		InputHash:  r.InputHash,
		OutputHash: r.OutputHash,
		Written:    r.Written,
		DryRun:     r.DryRun,
		Patterns:   patterns,
		Duration:   duration.String(),
		KeptNames:  append([]string(nil), names...),
	}
}
