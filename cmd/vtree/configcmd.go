package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/config"
	vterrors "github.com/vango-dev/vtree/internal/errors"
)

func configCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration vtree would run with: the configuration
file if one is found, with every default filled in.

Examples:
  vtree config > vtree.yaml
  vtree config --format json
  vtree config -c other.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := config.Format(format)
			if f != config.FormatJSON && f != config.FormatYAML {
				return vterrors.New("V021").WithDetail("--format must be json or yaml, got " + format + ".")
			}
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(config.FormatYAML), "Output format: json or yaml")

	return cmd
}
