package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dayreel/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			var err error
			if target == "" {
				target, err = config.DefaultConfigPath()
			} else {
				target, err = config.ExpandPath(target)
			}
			if err != nil {
				return err
			}

			if _, statErr := os.Stat(target); statErr == nil {
				if !overwrite {
					return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
				}
				if err := os.Remove(target); err != nil {
					return fmt.Errorf("replace existing config: %w", err)
				}
			} else if !os.IsNotExist(statErr) {
				return fmt.Errorf("check config path: %w", statErr)
			}

			// WriteSample creates the parent directory itself.
			if err := config.WriteSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(cmd.OutOrStdout(), "Edit the file to point library_dir at your clip folders before exporting.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and show what it resolves to",
		RunE: func(cmd *cobra.Command, args []string) error {
			var flagPath string
			if ctx.configFlag != nil {
				flagPath = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, path, exists, err := config.Load(flagPath)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "No config file found; built-in defaults apply")
			}
			fmt.Fprintf(out, "Library: %s\n", cfg.Paths.LibraryDir)
			fmt.Fprintf(out, "Sessions: %s\n", cfg.Paths.SessionDir)
			fmt.Fprintf(out, "Render: %dx%d (%s, crf %d)\n",
				cfg.Render.Width, cfg.Render.Height, cfg.Render.Preset, cfg.Render.CRF)
			fmt.Fprintf(out, "Tools: %s, %s\n", cfg.Tools.FFmpegBinary, cfg.Tools.FFprobeBinary)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
