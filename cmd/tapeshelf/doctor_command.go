package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tapeshelf/internal/deps"
	"tapeshelf/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check binaries, paths and remote sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printSection(out, "Configuration", colorize)
			configDetail := ctx.configPath
			if !ctx.configExists {
				configDetail = fmt.Sprintf("%s (not found, defaults used)", ctx.configPath)
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, configDetail, colorize))
			fmt.Fprintln(out, renderStatusLine("Journal", statusInfo, yesNo(cfg.Journal.Enabled), colorize))
			fmt.Fprintln(out, renderStatusLine("Notifications", statusInfo, yesNo(cfg.Notifications.NtfyTopic != ""), colorize))
			fmt.Fprintln(out)

			printSection(out, "Dependencies", colorize)
			depStatus := preflight.CheckSystemDeps(cmd.Context(), cfg)
			missing := dependencyLines(out, depStatus, colorize)
			fmt.Fprintln(out)

			printSection(out, "Paths", colorize)
			failed := 0
			for _, r := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					failed++
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			if missing > 0 || failed > 0 {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}
}

// dependencyLines prints one line per dependency and returns the number of
// required dependencies that are unavailable.
func dependencyLines(out io.Writer, statuses []deps.Status, colorize bool) int {
	var missing []string
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			fmt.Fprintln(out, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		} else {
			missing = append(missing, dep.Name)
		}
		fmt.Fprintln(out, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	if len(missing) > 0 {
		fmt.Fprintln(out, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return len(missing)
}
