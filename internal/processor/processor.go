package processor

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	jerrors "jsonator/internal/errors"
	"jsonator/internal/report"
)

const jsonSuffix = ".json"

// Run formats root, a single file or a directory of .json files, and records
// every outcome into rep. Diffs are written to diffOut in the order results
// arrive. A missing root is returned as a NotFound error before any file is
// touched.
func Run(ctx context.Context, root string, opts Options, rep *report.Report, diffOut io.Writer, updates chan<- ProgressUpdate) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return jerrors.ErrNotFound(root)
		}
		return jerrors.ErrIO("stat", root, err)
	}

	proc := NewProcessor(opts.Store, opts.Format, opts.Mode)

	jobs := make(chan Job)
	results := make(chan Result)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			worker(proc, jobs, results)
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			Record(rep, res)
			if res.Diff != "" && diffOut != nil {
				_, _ = io.WriteString(diffOut, res.Diff)
			}
			if updates != nil {
				update := ProgressUpdate{ProcessedDelta: 1}
				switch res.Outcome {
				case OutcomeChanged:
					update.ChangedDelta = 1
				case OutcomeFailed:
					update.FailedDelta = 1
				}
				updates <- update
			}
		}
	}()

	producerErr := make(chan error, 1)
	go func() {
		defer close(jobs)

		sendJob := func(job Job) error {
			if updates != nil {
				updates <- ProgressUpdate{TotalDelta: 1}
			}
			if ctx == nil {
				jobs <- job
				return nil
			}
			select {
			case jobs <- job:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if !info.IsDir() {
			producerErr <- sendJob(Job{Path: root, Display: root})
			return
		}

		producerErr <- walk(os.DirFS(root), root, opts.Recursive, sendJob)
	}()

	wg.Wait()
	close(results)
	<-collectorDone

	if err := <-producerErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// walk sends every .json file under root in lexical order. Symlinks are
// followed unless they resolve to something other than a regular file; a
// dangling one is sent so that reading it fails. An unreadable entry below
// root is sent as a failed job and the walk goes on.
func walk(fsys fs.FS, root string, recursive bool, send func(Job) error) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		full := filepath.Join(root, filepath.FromSlash(path))
		if walkErr != nil {
			if path == "." {
				return walkErr
			}
			if err := send(Job{Path: full, Display: full, Err: jerrors.ErrIO("read", full, walkErr)}); err != nil {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != "." && !recursive {
				return fs.SkipDir
			}
			return nil
		}
		if !IsJSONFile(path) {
			return nil
		}

		switch typ := d.Type(); {
		case typ.IsRegular():
		case typ&fs.ModeSymlink != 0:
			if info, err := fs.Stat(fsys, path); err == nil && !info.Mode().IsRegular() {
				return nil
			}
		default:
			return nil
		}
		return send(Job{Path: full, Display: full})
	})
}

// IsJSONFile reports whether a directory entry is selected for formatting.
func IsJSONFile(path string) bool {
	return strings.HasSuffix(path, jsonSuffix)
}

func worker(proc *Processor, jobs <-chan Job, results chan<- Result) {
	for job := range jobs {
		if job.Err != nil {
			results <- Result{Path: job.Path, Display: job.Display, Outcome: OutcomeFailed, Err: job.Err}
			continue
		}
		res := proc.Process(job.Path)
		res.Display = job.Display
		results <- res
	}
}
