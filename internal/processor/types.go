package processor

import "jsonator/internal/canonical"

// Mode controls what happens after a file has been formatted.
type Mode struct {
	// CheckOnly never writes files back.
	CheckOnly bool
	ShowDiff  bool
	Colorize  bool
}

type Options struct {
	Format    canonical.Options
	Mode      Mode
	Recursive bool
	// Workers defaults to runtime.NumCPU when zero or negative.
	Workers int
	Store   FileStore
}

type Job struct {
	Path    string
	Display string
	// Err is set when the entry could not be listed; the job fails unprocessed.
	Err error
}

type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeChanged
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeChanged:
		return "changed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unchanged"
	}
}

type Result struct {
	Path    string
	Display string
	Outcome Outcome
	Err     error
	// Diff is empty unless Mode.ShowDiff is set and the file changed.
	Diff string
}

type ProgressUpdate struct {
	TotalDelta     int
	ProcessedDelta int
	ChangedDelta   int
	FailedDelta    int
}
