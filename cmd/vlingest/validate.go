package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vlingest/internal/config"
	"vlingest/internal/study"
)

func newValidateCmd(g *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the pipeline and compile every study it selects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, base, err := g.loadPipeline()
			if err != nil {
				return err
			}
			if err := reportIssues(cmd, "pipeline", config.ValidatePipeline(p)); err != nil {
				return err
			}
			descs, err := study.ResolveAll(p.Studies, base)
			if err != nil {
				return err
			}
			var bad int
			for _, d := range descs {
				if _, err := study.Compile(d, study.Options{Coerce: p.Coerce, Logger: g.logger}); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					bad++
				}
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d studies: %w", bad, len(descs), errInvalidConfig)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid: %d studies\n", len(descs))
			return nil
		},
	}
}

func newStudiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "studies",
		Short: "List the built-in study descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := study.EmbeddedNames()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STUDY\tDOI\tDESCRIPTION")
			for _, n := range names {
				d, err := study.LoadEmbedded(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.StudyID, d.DOI, d.Description)
			}
			return tw.Flush()
		},
	}
}
