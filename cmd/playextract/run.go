package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"play-extract/pkg/playdownloadservice"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run [url-or-path...]",
		Short: "Fetch plays and write one JSON transcript per play",
		Long: `Fetch every source and write its transcript to the output directory
and to each enabled database or object sink.

Sources given as arguments replace sources.urls; sources.file and
sources.feed are still appended.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCfg, err := ctx.serviceConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			lock, err := lockOutputDir(svcCfg.App.Output.Dir)
			if err != nil {
				return err
			}
			defer lock.Unlock()

			svc, err := playdownloadservice.NewService(cmd.Context(), svcCfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			srcs, err := svc.ResolveSources(cmd.Context(), args)
			if err != nil {
				return err
			}

			summary := svc.Run(cmd.Context(), srcs)
			fmt.Fprint(cmd.OutOrStdout(), renderSummary(summary))

			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if summary.AllFailed() {
				return errors.New("no play was saved")
			}
			return nil
		},
	}
}
