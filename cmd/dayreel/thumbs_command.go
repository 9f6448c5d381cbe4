package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dayreel/internal/mediasource"
	"dayreel/internal/thumbnails"
)

func newThumbsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thumbs <file>",
		Short: "Generate the proxy thumbnail strip for one clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			src := ctx.source()

			seg, err := mediasource.NewSegment(cmd.Context(), src, args[0])
			if err != nil {
				return err
			}

			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			outDir := filepath.Join(cfg.Paths.ThumbnailDir, base)
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create thumbnail directory: %w", err)
			}

			pipeline := thumbnails.NewPipeline(src, ctx.loggerValue(), cfg.Thumbnails)
			written := 0
			failed := 0
			for frame := range pipeline.Generate(cmd.Context(), seg) {
				if frame.Image == nil {
					failed++
					continue
				}
				path := filepath.Join(outDir, fmt.Sprintf("%03d.png", frame.Index))
				file, createErr := os.Create(path)
				if createErr != nil {
					return fmt.Errorf("create thumbnail file: %w", createErr)
				}
				encErr := png.Encode(file, frame.Image)
				file.Close()
				if encErr != nil {
					return fmt.Errorf("encode thumbnail: %w", encErr)
				}
				written++
			}
			if err := cmd.Context().Err(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d thumbnails to %s\n", written, outDir)
			if failed > 0 {
				fmt.Fprintf(out, "%d frames could not be extracted\n", failed)
			}
			return nil
		},
	}
	return cmd
}
