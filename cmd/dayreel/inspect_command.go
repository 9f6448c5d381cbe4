package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>...",
		Short: "Probe media files and show their timeline-relevant properties",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := ctx.source()

			rows := make([][]string, 0, len(args))
			for _, ref := range args {
				info, err := src.Probe(cmd.Context(), ref)
				if err != nil {
					rows = append(rows, []string{ref, "-", "-", "-", "-", err.Error()})
					continue
				}
				rows = append(rows, []string{
					ref,
					formatClock(info.DurationSeconds),
					fmt.Sprintf("%.0fx%.0f", info.NaturalSize.Width, info.NaturalSize.Height),
					fmt.Sprintf("%d", info.RotationQuarterTurns),
					yesNo(info.HasAudio),
					"",
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{
					{name: "File"},
					{name: "Duration", numeric: true},
					{name: "Size", numeric: true},
					{name: "Rotation", numeric: true},
					{name: "Audio"},
					{name: "Error"},
				},
				rows,
			))
			return nil
		},
	}
}
