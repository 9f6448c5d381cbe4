package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dayreel/internal/clipstore"
	"dayreel/internal/timeline"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	clipsCmd := &cobra.Command{
		Use:   "clips",
		Short: "Browse the exported clip catalog",
	}
	clipsCmd.AddCommand(newClipsListCommand(ctx))
	clipsCmd.AddCommand(newClipsRemoveCommand(ctx))
	return clipsCmd
}

func newClipsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exported clips, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := clipstore.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			clips, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(clips) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No exported clips yet")
				return nil
			}

			rows := make([][]string, 0, len(clips))
			for _, clip := range clips {
				rows = append(rows, []string{
					string(clip.Day),
					formatClock(clip.DurationSeconds),
					clip.VideoPath,
					yesNo(clip.ThumbnailPath != ""),
					clip.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{
					{name: "Day"},
					{name: "Length", numeric: true},
					{name: "Video"},
					{name: "Poster"},
					{name: "Exported"},
				},
				rows,
			))
			return nil
		},
	}
}

func newClipsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <day>",
		Short: "Remove a clip from the catalog (files stay on disk)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			day, err := timeline.ParseDay(args[0])
			if err != nil {
				return err
			}
			store, err := clipstore.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Delete(cmd.Context(), day)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no clip recorded for %s", day)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the catalog\n", day)
			return nil
		},
	}
}
