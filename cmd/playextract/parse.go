package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"play-extract/pkg/playdownloadservice"
	"play-extract/pkg/sources"
	"play-extract/pkg/store"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Extract local text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCfg, err := ctx.serviceConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if toStdout {
				// stdout mode never touches the sinks
				app := *svcCfg.App
				app.SQLite.Enabled = false
				app.Postgres.Enabled = false
				app.Supabase.Enabled = false
				app.Mongo.Enabled = false
				app.ObjectStore.Enabled = false
				svcCfg.App = &app
			}

			svc, err := playdownloadservice.NewService(cmd.Context(), svcCfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			if toStdout {
				for _, path := range args {
					rec, err := svc.Parse(cmd.Context(), path)
					if err != nil {
						return fmt.Errorf("parse %s: %w", path, err)
					}
					data, err := store.EncodeTranscript(rec.Transcript)
					if err != nil {
						return err
					}
					if _, err := cmd.OutOrStdout().Write(data); err != nil {
						return err
					}
				}
				return nil
			}

			lock, err := lockOutputDir(svcCfg.App.Output.Dir)
			if err != nil {
				return err
			}
			defer lock.Unlock()

			summary := svc.Run(cmd.Context(), sources.FromLocations(args))
			fmt.Fprint(cmd.OutOrStdout(), renderSummary(summary))
			if summary.AllFailed() {
				return errors.New("no play was saved")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the transcript JSON instead of writing files")
	return cmd
}
