package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"play-extract/pkg/playdownloadservice"
)

func newReplicateCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "replicate",
		Short: "Copy existing JSON transcripts into the enabled database and object sinks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCfg, err := ctx.serviceConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			report, err := playdownloadservice.Replicate(cmd.Context(), svcCfg, workers)
			if report != nil {
				fmt.Fprint(cmd.OutOrStdout(), renderReport(report))
			}
			if err != nil {
				return err
			}
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d records failed to replicate", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 4, "Number of concurrent replication workers")
	return cmd
}
