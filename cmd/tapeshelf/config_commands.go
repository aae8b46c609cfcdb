package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tapeshelf/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configInitTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set catalog, audio_root and output_root under [paths] before exporting.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}

func configInitTarget(flagValue string) (string, error) {
	if target := strings.TrimSpace(flagValue); target != "" {
		expanded, err := config.ExpandPath(target)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	target, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and show the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			source := ctx.configPath
			if !ctx.configExists {
				source += " (not found, defaults used)"
			}
			fmt.Fprintf(out, "Config path: %s\n", source)
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, resolvedSettings(cfg), nil))

			if err := cfg.RequireExportPaths(); err != nil {
				fmt.Fprintln(out, renderStatusLine("Export paths", statusWarn, err.Error(), false))
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func resolvedSettings(cfg *config.Config) [][]string {
	orUnset := func(value string) string {
		if value == "" {
			return "(unset)"
		}
		return value
	}
	return [][]string{
		{"paths.catalog", orUnset(cfg.Paths.Catalog)},
		{"paths.audio_root", orUnset(cfg.Paths.AudioRoot)},
		{"paths.output_root", orUnset(cfg.Paths.OutputRoot)},
		{"paths.final_root", orUnset(cfg.Paths.FinalRoot)},
		{"paths.log_dir", cfg.Paths.LogDir},
		{"paths.state_dir", cfg.Paths.StateDir},
		{"export.batch_size", strconv.Itoa(cfg.Export.BatchSize)},
		{"export.segment_workers", strconv.Itoa(cfg.Export.SegmentWorkers)},
		{"export.final_workers", strconv.Itoa(cfg.Export.FinalWorkers)},
		{"export.tolerate_missing", strconv.FormatBool(cfg.Export.TolerateMissing)},
		{"ffmpeg.ffmpeg_binary", cfg.FFmpegBinary()},
		{"ffmpeg.ffprobe_binary", cfg.FFprobeBinary()},
		{"sync.sessions_url", orUnset(cfg.Sync.SessionsURL)},
		{"notifications.ntfy_topic", orUnset(cfg.Notifications.NtfyTopic)},
		{"journal.enabled", yesNo(cfg.Journal.Enabled)},
	}
}
