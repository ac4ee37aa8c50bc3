// Package report aggregates per-file outcomes into a run summary and exit code.
package report

import (
	stderrors "errors"
	"fmt"
	"strings"

	jerrors "jsonator/internal/errors"
	"jsonator/internal/logging"
)

// ExitCode is the process status a run ends with.
type ExitCode int

const (
	NothingWouldChange          ExitCode = 0
	SomeFilesWouldBeReformatted ExitCode = 1
	FileNotFound                ExitCode = 122
	InternalError               ExitCode = 123
)

func (c ExitCode) String() string {
	switch c {
	case NothingWouldChange:
		return "nothing would change"
	case SomeFilesWouldBeReformatted:
		return "some files would be reformatted"
	case FileNotFound:
		return "file not found"
	case InternalError:
		return "internal error"
	default:
		return fmt.Sprintf("exit code %d", int(c))
	}
}

// Counts is a snapshot of the report counters.
type Counts struct {
	Changed   int
	Unchanged int
	Failed    int
}

func (c Counts) Total() int {
	return c.Changed + c.Unchanged + c.Failed
}

// Report counts reformatted, unchanged and failed files for one run.
//
// A Report is not safe for concurrent use; a run feeds it from a single
// collector goroutine.
type Report struct {
	check bool
	diff  bool

	changeCount  int
	sameCount    int
	failureCount int

	log logging.Logger
}

// New creates an empty report. check and diff only change message wording.
func New(check, diff bool, log logging.Logger) *Report {
	if log == nil {
		log = logging.Nop()
	}
	return &Report{check: check, diff: diff, log: log}
}

// RecordSuccess counts a file that was parsed and compared.
func (r *Report) RecordSuccess(path string, changed bool) {
	if changed {
		verb := "reformatted"
		if r.conditional() {
			verb = "would reformat"
		}
		r.log.Warn(verb + " " + path)
		r.changeCount++
		return
	}

	r.log.Info(path + " already well formatted, good job.")
	r.sameCount++
}

// RecordFailure counts a file that could not be formatted. The reason is
// only displayed.
func (r *Report) RecordFailure(path, reason string) {
	r.log.Error(fmt.Sprintf("error: cannot format %s: %s", path, reason))
	r.failureCount++
}

// RecordError counts a failed file like RecordFailure and logs the error's
// code, path and offset at debug level.
func (r *Report) RecordError(path string, err error) {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	r.RecordFailure(path, reason)

	var e *jerrors.Error
	if stderrors.As(err, &e) {
		r.log.With("path", path).Debug(e.Detail(), "code", e.Code.Name())
	}
}

// Status returns the exit code for the current counters:
// any failure wins, then reformatted files in check mode, otherwise zero.
func (r *Report) Status() ExitCode {
	if r.failureCount > 0 {
		return InternalError
	}
	if r.changeCount > 0 && r.check {
		return SomeFilesWouldBeReformatted
	}
	return NothingWouldChange
}

// Summary renders e.g. "2 files would be reformatted, 1 file would be left unchanged."
func (r *Report) Summary() string {
	reformatted, unchanged, failed := "reformatted", "left unchanged", "failed to reformat"
	if r.conditional() {
		reformatted, unchanged, failed = "would be reformatted", "would be left unchanged", "would fail to reformat"
	}

	var parts []string
	if r.changeCount > 0 {
		parts = append(parts, clause(r.changeCount, reformatted))
	}
	if r.sameCount > 0 {
		parts = append(parts, clause(r.sameCount, unchanged))
	}
	if r.failureCount > 0 {
		parts = append(parts, clause(r.failureCount, failed))
	}
	return strings.Join(parts, ", ") + "."
}

func (r *Report) String() string {
	return r.Summary()
}

func (r *Report) Counts() Counts {
	return Counts{
		Changed:   r.changeCount,
		Unchanged: r.sameCount,
		Failed:    r.failureCount,
	}
}

func (r *Report) conditional() bool {
	return r.check || r.diff
}

func clause(n int, phrase string) string {
	noun := "files"
	if n == 1 {
		noun = "file"
	}
	return fmt.Sprintf("%d %s %s", n, noun, phrase)
}
