package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"digital.vasic.pavlov/pkg/env"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Prints the configuration resolved from the .env file, the
environment and flags, followed by the variables loaded from the
.env file with secrets masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc := struct {
				Config env.Config        `yaml:"config"`
				Loaded map[string]string `yaml:"loaded,omitempty"`
			}{
				Config: a.cfg.Redacted(),
				Loaded: env.RedactVars(a.envVars),
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			if err := enc.Encode(doc); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
