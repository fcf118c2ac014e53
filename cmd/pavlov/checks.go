package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"digital.vasic.pavlov/pkg/assertion"
	"digital.vasic.pavlov/pkg/introspect"
)

// checkInfo is the listing entry for one catalog check.
type checkInfo struct {
	Name   string `json:"name" yaml:"name"`
	Arity  string `json:"arity" yaml:"arity"`
	Phrase string `json:"phrase" yaml:"phrase"`
}

func newChecksCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "checks",
		Short: "List the built-in checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listChecks(cmd.OutOrStdout(), assertion.Default().Catalog(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func listChecks(w io.Writer, c *assertion.Catalog, format string) error {
	checks := c.Checks()
	infos := make([]checkInfo, 0, len(checks))
	for _, ch := range checks {
		infos = append(infos, checkInfo{
			Name:   ch.Name,
			Arity:  ch.Arity.String(),
			Phrase: introspect.Phrase(ch.Name),
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(infos); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tARITY\tPHRASE")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Arity, info.Phrase)
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown format %q", format)
}
