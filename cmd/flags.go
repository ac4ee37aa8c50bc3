package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"jsonator/internal/config"
)

type flagValues struct {
	configPath string
	verbose    bool
	quiet      bool
	logFormat  string

	sortKeys      bool
	noEnsureASCII bool
	indent        int
	tab           bool
	noIndent      bool
	compact       bool

	check     bool
	diff      bool
	color     bool
	recursive bool
	workers   int
	progress  bool

	debounce time.Duration
}

func addPersistentFlags(cmd *cobra.Command, f *flagValues) {
	flags := cmd.PersistentFlags()

	flags.StringVar(&f.configPath, "config", "", "config file (default: .jsonator.{toml,yaml,yml,json} in the working directory)")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "also report files that are already formatted")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "only report errors")
	flags.StringVar(&f.logFormat, "log-format", "", "log format: plain, text or json")

	flags.BoolVar(&f.sortKeys, "sort-keys", false, "sort the output of objects by key")
	flags.BoolVar(&f.noEnsureASCII, "no-ensure-ascii", false, "do not escape non-ASCII characters")
	flags.IntVar(&f.indent, "indent", 4, "separate items with newlines and indent with this many spaces")
	flags.BoolVar(&f.tab, "tab", false, "separate items with newlines and indent with tabs")
	flags.BoolVar(&f.noIndent, "no-indent", false, "separate items with spaces rather than newlines")
	flags.BoolVar(&f.compact, "compact", false, "suppress all whitespace separation")

	flags.BoolVar(&f.check, "check", false, "don't write the files back, just return the status")
	flags.BoolVar(&f.diff, "diff", false, "print a diff for each file that would change")
	flags.BoolVar(&f.color, "color", false, "color the diff output")
	flags.BoolVarP(&f.recursive, "recursive", "r", false, "scan subdirectories")

	cmd.MarkFlagsMutuallyExclusive("indent", "tab", "no-indent", "compact")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// loadConfig layers the flags the user actually set over the loaded config.
func loadConfig(cmd *cobra.Command, f *flagValues) (*config.Config, error) {
	cfg, err := config.Load(f.configPath, ".")
	if err != nil {
		return nil, &exitError{code: usageExitCode, err: err}
	}

	changed := cmd.Flags().Changed

	if changed("sort-keys") {
		cfg.Format.SortKeys = f.sortKeys
	}
	if changed("no-ensure-ascii") {
		cfg.Format.EnsureASCII = !f.noEnsureASCII
	}
	if changed("indent") || changed("tab") || changed("no-indent") || changed("compact") {
		cfg.Format.Tab = f.tab
		cfg.Format.NoIndent = f.noIndent
		cfg.Format.Compact = f.compact
		if changed("indent") {
			cfg.Format.Indent = f.indent
		}
	}

	if changed("check") {
		cfg.Run.Check = f.check
	}
	if changed("diff") {
		cfg.Run.Diff = f.diff
	}
	if changed("color") {
		cfg.Run.Color = f.color
	}
	if changed("recursive") {
		cfg.Run.Recursive = f.recursive
	}
	if changed("workers") {
		cfg.Run.Workers = f.workers
	}
	if changed("progress") {
		cfg.Run.Progress = f.progress
	}

	if changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
	if changed("verbose") && f.verbose {
		cfg.Logging.Level = "info"
	}
	if changed("quiet") && f.quiet {
		cfg.Logging.Level = "error"
		cfg.Run.Quiet = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, &exitError{code: usageExitCode, err: err}
	}
	return cfg, nil
}
