package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jsonator/internal/processor"
	"jsonator/internal/report"
	"jsonator/internal/watch"
)

func newWatchCmd(f *flagValues) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [flags] <path>",
		Short: "Format JSON files whenever they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer log.Close()

			if _, err := os.Stat(path); err != nil {
				log.Error(fmt.Sprintf("error: cannot watch %s: file not found", path))
				return &exitError{code: int(report.FileNotFound)}
			}

			proc := processor.NewProcessor(processor.OSStore{}, cfg.FormatOptions(), cfg.Mode())
			w := watch.New(proc, cfg.Mode(), watch.Options{
				Recursive: cfg.Run.Recursive,
				Debounce:  f.debounce,
			}, log, cmd.OutOrStdout())

			if err := w.Run(cmd.Context(), path); err != nil {
				return &exitError{code: int(report.InternalError), err: err}
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&f.debounce, "debounce", watch.DefaultDebounce, "quiet period before a changed file is formatted")
	return cmd
}
