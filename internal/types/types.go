package types

// Outcome is what happened to a single configuration line.
type Outcome int

const (
	// Unchanged lines are passed through byte-for-byte.
	Unchanged Outcome = iota
	// Kept module options were promoted to built-in (=y).
	Kept
	// Disabled module options were rewritten to the "is not set" comment form.
	Disabled
)

func (o Outcome) String() string {
	switch o {
	case Kept:
		return "kept"
	case Disabled:
		return "disabled"
	default:
		return "unchanged"
	}
}

// Report describes one audited configuration file: which module options were
// promoted, which were disabled, and where the result was written.
type Report struct {
	Path       string   `json:"path"`
	OutputPath string   `json:"output_path"`
	Kept       []string `json:"kept"`
	Disabled   []string `json:"disabled"`
	Lines      int      `json:"lines"`
	InputHash  string   `json:"input_hash"`
	OutputHash string   `json:"output_hash"`
	Changed    bool     `json:"changed"`
	Written    bool     `json:"written"`
	DryRun     bool     `json:"dry_run,omitempty"`
}

// Processed is the number of module lines the audit classified.
func (r Report) Processed() int { return len(r.Kept) + len(r.Disabled) }
