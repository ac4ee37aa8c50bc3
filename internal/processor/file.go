package processor

import (
	stderrors "errors"
	"path/filepath"

	"jsonator/internal/canonical"
	jerrors "jsonator/internal/errors"
	"jsonator/internal/report"
	"jsonator/internal/textdiff"
)

const formattedLabel = "formatted file"

// Processor runs the read, format, compare, write and diff pipeline for one file.
type Processor struct {
	store  FileStore
	format canonical.Options
	mode   Mode
}

func NewProcessor(store FileStore, format canonical.Options, mode Mode) *Processor {
	if store == nil {
		store = OSStore{}
	}
	return &Processor{store: store, format: format, mode: mode}
}

// Process never panics on bad input; every failure ends up in Result.Err.
func (p *Processor) Process(path string) Result {
	res := Result{Path: path, Display: path}

	original, err := p.store.ReadText(path)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	formatted, err := canonical.Format(original, p.format)
	if err != nil {
		var e *jerrors.Error
		if stderrors.As(err, &e) && e.Path == "" {
			e.WithPath(path)
		}
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	if formatted == original {
		res.Outcome = OutcomeUnchanged
		return res
	}

	if !p.mode.CheckOnly {
		if err := p.store.WriteText(path, formatted); err != nil {
			res.Outcome = OutcomeFailed
			res.Err = err
			return res
		}
	}
	res.Outcome = OutcomeChanged

	if p.mode.ShowDiff {
		diff := textdiff.Unified(original, formatted, filepath.Base(path), formattedLabel)
		if p.mode.Colorize {
			diff = textdiff.Colorize(diff)
		}
		res.Diff = diff
	}
	return res
}

// Record folds a result into the report.
func Record(rep *report.Report, res Result) {
	switch res.Outcome {
	case OutcomeFailed:
		rep.RecordError(res.Display, res.Err)
	case OutcomeChanged:
		rep.RecordSuccess(res.Display, true)
	default:
		rep.RecordSuccess(res.Display, false)
	}
}
