package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dayreel/internal/session"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List saved editing sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := session.NewStore(cfg.Paths.SessionDir, ctx.loggerValue())

			days, err := store.Days()
			if err != nil {
				return err
			}
			if len(days) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved sessions")
				return nil
			}

			rows := make([][]string, 0, len(days))
			for _, day := range days {
				record, found, loadErr := store.Load(day)
				if loadErr != nil || !found {
					rows = append(rows, []string{string(day), "-", "-", "-", "-"})
					continue
				}
				background := "-"
				if record.Background != nil {
					background = record.Background.Filename
				}
				rows = append(rows, []string{
					string(day),
					fmt.Sprintf("%d", len(record.Segments)),
					yesNo(record.MuteOriginalAudio),
					background,
					record.SavedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{
					{name: "Day"},
					{name: "Clips", numeric: true},
					{name: "Muted"},
					{name: "Background"},
					{name: "Saved"},
				},
				rows,
			))
			return nil
		},
	}
}
