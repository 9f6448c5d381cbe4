package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dayreel/internal/clipstore"
	"dayreel/internal/export"
	"dayreel/internal/logging"
	"dayreel/internal/session"
	"dayreel/internal/timeline"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var dayFlag string
	var mute bool
	var background string
	var backgroundVolume float64
	var coverFit bool
	var dateOverlay bool

	cmd := &cobra.Command{
		Use:   "export <directory>",
		Short: "Render a day's clips to an MP4 in the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			day, err := resolveDay(args[0], dayFlag)
			if err != nil {
				return err
			}

			opts := composeOptions{
				mute:             mute,
				background:       background,
				backgroundVolume: backgroundVolume,
				coverFit:         coverFit,
				dateOverlays:     dateOverlay,
			}
			if coverFit {
				opts.renderSize = timeline.Size{
					Width:  float64(cfg.Render.Width),
					Height: float64(cfg.Render.Height),
				}
			}
			plan, draft, err := composeDay(cmd.Context(), ctx, ctx.source(), args[0], day, opts)
			if err != nil {
				return err
			}

			clips, err := clipstore.Open(cfg)
			if err != nil {
				return err
			}
			defer clips.Close()

			exporter := export.New(cfg, ctx.source(), clips, ctx.loggerValue())
			out := cmd.OutOrStdout()
			progress := newProgressPrinter(out, "Exporting")
			result, err := exporter.Export(cmd.Context(), plan, day, progress.update)
			progress.finish()
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Exported %s (%s) to %s\n", day, formatClock(result.DurationSeconds), result.VideoPath)
			if result.ThumbnailPath != "" {
				fmt.Fprintf(out, "Poster: %s\n", result.ThumbnailPath)
			}

			// The saved session is what a later re-edit of the same day restores.
			store := session.NewStore(cfg.Paths.SessionDir, ctx.loggerValue())
			if saveErr := store.Save(session.Capture(draft)); saveErr != nil {
				ctx.loggerValue().Warn("saving editing session failed", logging.Error(saveErr))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dayFlag, "day", "", "Day key (YYYY-MM-DD); defaults to the directory name")
	cmd.Flags().BoolVar(&mute, "mute", false, "Mute the clips' original audio")
	cmd.Flags().StringVar(&background, "background", "", "Background audio file")
	cmd.Flags().Float64Var(&backgroundVolume, "background-volume", 0.4, "Background audio gain in [0,1]")
	cmd.Flags().BoolVar(&coverFit, "cover-fit", false, "Scale every clip to fill the configured render size")
	cmd.Flags().BoolVar(&dateOverlay, "date-overlay", false, "Burn each clip's day into the frame")
	return cmd
}
