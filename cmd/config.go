package cmd

import (
	"github.com/spf13/cobra"
)

func newConfigCmd(f *flagValues) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file, JSONATOR_*
environment variables and flags have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}

			out, err := cfg.Dump(output)
			if err != nil {
				return &exitError{code: usageExitCode, err: err}
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "toml", "output format: toml or yaml")
	return cmd
}
