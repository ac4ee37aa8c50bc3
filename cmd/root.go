package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	jerrors "jsonator/internal/errors"
	"jsonator/internal/logging"
	"jsonator/internal/processor"
	"jsonator/internal/report"
	"jsonator/internal/tui"
)

// usageExitCode is returned for bad flags, bad arguments and bad configuration.
const usageExitCode = 2

// exitError carries a process exit code out of RunE. err is printed when set.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func newRootCmd() *cobra.Command {
	f := &flagValues{}

	rootCmd := &cobra.Command{
		Use:   "jsonator [flags] <path>",
		Short: "jsonator - format and check JSON files",
		Long: `jsonator rewrites JSON files in a canonical layout, or with --check reports
which files would change.

Exit status:
  0    nothing would change
  1    some files would be reformatted (--check)
  122  path not found
  123  at least one file could not be formatted`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args[0], f)
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	addPersistentFlags(rootCmd, f)
	rootCmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "number of files formatted in parallel (0 = one per CPU)")
	rootCmd.Flags().BoolVar(&f.progress, "progress", false, "show a progress view on the terminal")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(f))
	rootCmd.AddCommand(newWatchCmd(f))
	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return executeCode(ctx, newRootCmd())
}

func executeCode(ctx context.Context, rootCmd *cobra.Command) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	stderr := rootCmd.ErrOrStderr()
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintf(stderr, "error: %v\n", exitErr.err)
		}
		return exitErr.code
	}

	fmt.Fprintf(stderr, "error: %v\n", err)
	fmt.Fprintln(stderr, "Run 'jsonator --help' for usage.")
	return usageExitCode
}

func runFormat(cmd *cobra.Command, path string, f *flagValues) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	progress := cfg.Run.Progress && isTerminal(stderr)

	// Log lines would tear the progress view; hold them until it exits.
	var held bytes.Buffer
	logOut := stderr
	if progress {
		logOut = &held
	}
	log, err := newLogger(cmd, cfg.Logging, logOut)
	if err != nil {
		return err
	}
	defer log.Close()

	if _, err := os.Stat(path); err != nil {
		log.Error(fmt.Sprintf("error: cannot format %s: file not found", path))
		return &exitError{code: int(report.FileNotFound)}
	}

	rep := report.New(cfg.Run.Check, cfg.Run.Diff, log)
	opts := processor.Options{
		Format:    cfg.FormatOptions(),
		Mode:      cfg.Mode(),
		Recursive: cfg.Run.Recursive,
		Workers:   cfg.Run.Workers,
		Store:     processor.OSStore{},
	}

	started := time.Now()
	if progress {
		err = runWithProgress(cmd.Context(), path, opts, rep, cmd.OutOrStdout(), stderr)
		_, _ = held.WriteTo(stderr)
	} else {
		err = processor.Run(cmd.Context(), path, opts, rep, cmd.OutOrStdout(), nil)
	}
	if err != nil {
		if jerrors.Is(err, jerrors.NotFound) {
			return &exitError{code: int(report.FileNotFound), err: err}
		}
		return &exitError{code: int(report.InternalError), err: err}
	}

	if !cfg.Run.Quiet && rep.Counts().Total() > 0 {
		if progress {
			fmt.Fprintln(stderr, tui.RenderSummary(tui.SummaryRows(rep.Counts(), cfg.Run.Check, time.Since(started))))
		}
		fmt.Fprintln(stderr, rep.Summary())
	}

	if status := rep.Status(); status != report.NothingWouldChange {
		return &exitError{code: int(status)}
	}
	return nil
}

func runWithProgress(ctx context.Context, path string, opts processor.Options, rep *report.Report, diffOut, uiOut io.Writer) error {
	updates := make(chan processor.ProgressUpdate, 64)
	model := tui.NewModel(updates, opts.Mode.CheckOnly)
	program := tea.NewProgram(model, tea.WithOutput(uiOut), tea.WithInput(nil))

	uiDone := make(chan struct{})
	go func() {
		_, _ = program.Run()
		close(uiDone)
	}()

	err := processor.Run(ctx, path, opts, rep, diffOut, updates)
	close(updates)
	<-uiDone
	return err
}

// newLogger builds the run logger. The caller closes it once the run is over.
func newLogger(cmd *cobra.Command, cfg logging.Config, stderr io.Writer) (*logging.SlogLogger, error) {
	switch cfg.Output {
	case "stdout":
		cfg.Writer = cmd.OutOrStdout()
	case "file":
	default:
		cfg.Writer = stderr
	}

	log, err := logging.New(cfg)
	if err != nil {
		return nil, &exitError{code: usageExitCode, err: err}
	}
	return log, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
