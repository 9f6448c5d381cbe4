package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newComposeCommand(ctx *commandContext) *cobra.Command {
	var dayFlag string
	var mute bool
	var background string
	var backgroundVolume float64

	cmd := &cobra.Command{
		Use:   "compose <directory>",
		Short: "Assemble a day's clips and show the resulting timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := resolveDay(args[0], dayFlag)
			if err != nil {
				return err
			}

			plan, _, err := composeDay(cmd.Context(), ctx, ctx.source(), args[0], day, composeOptions{
				mute:             mute,
				background:       background,
				backgroundVolume: backgroundVolume,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(plan.Placements))
			for i, placement := range plan.Placements {
				source := plan.VideoTrack.Insertions[i].SourceRef
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					filepath.Base(source),
					formatClock(placement.OutputStart),
					formatClock(placement.OutputDuration),
					formatClock(placement.SourceStart),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]column{
					{name: "#", numeric: true},
					{name: "Clip"},
					{name: "At", numeric: true},
					{name: "Length", numeric: true},
					{name: "Source Start", numeric: true},
				},
				rows,
			))
			fmt.Fprintf(out, "Day %s: %d clips, %s total, %.0fx%.0f\n",
				day, len(plan.Placements), formatClock(plan.TotalDuration),
				plan.RenderSize.Width, plan.RenderSize.Height)
			if plan.BackgroundTrack != nil {
				fmt.Fprintf(out, "Background: %s at volume %.2f\n",
					filepath.Base(plan.BackgroundTrack.Insertions[0].SourceRef), plan.BackgroundVolume)
			}
			if plan.AudioTrack == nil {
				fmt.Fprintln(out, "Original audio: muted")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dayFlag, "day", "", "Day key (YYYY-MM-DD); defaults to the directory name")
	cmd.Flags().BoolVar(&mute, "mute", false, "Mute the clips' original audio")
	cmd.Flags().StringVar(&background, "background", "", "Background audio file")
	cmd.Flags().Float64Var(&backgroundVolume, "background-volume", 0.4, "Background audio gain in [0,1]")
	return cmd
}
