package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tapeshelf/internal/config"
	"tapeshelf/internal/export"
	"tapeshelf/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var policyName string
	var root string
	var maxAge time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove partial files left by interrupted exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			policy, err := export.ForConfig(cfg, policyName)
			if err != nil {
				return err
			}
			target := export.OutputRoot(cfg, policy)
			if root != "" {
				if target, err = config.ExpandPath(root); err != nil {
					return err
				}
			}
			if target == "" {
				return fmt.Errorf("no output root configured for %s", policy.Name)
			}

			unlock, err := export.LockOutputRoot(target)
			if err != nil {
				return err
			}
			defer unlock()

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			result, err := staging.CleanStale(cmd.Context(), target, maxAge, dryRun, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			verb := "removed"
			if dryRun {
				verb = "would remove"
			}
			for _, path := range result.Removed {
				fmt.Fprintln(out, renderStatusLine(verb, statusOK, path, false))
			}
			for _, path := range result.Kept {
				fmt.Fprintln(out, renderStatusLine("too recent", statusInfo, path, false))
			}
			for _, e := range result.Errors {
				fmt.Fprintln(out, renderStatusLine("failed", statusError, fmt.Sprintf("%s: %v", e.Path, e.Error), false))
			}
			fmt.Fprintf(out, "%s %d partial files under %s\n", verb, len(result.Removed), target)
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d partial files could not be removed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policyName, "policy", "segments", "Export policy whose output root is cleaned (segments or final)")
	cmd.Flags().StringVar(&root, "root", "", "Directory to clean instead of the policy's output root")
	cmd.Flags().DurationVar(&maxAge, "max-age", time.Hour, "Only remove partial files older than this")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List stale partial files without removing them")
	return cmd
}
