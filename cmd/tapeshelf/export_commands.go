package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tapeshelf/internal/config"
	"tapeshelf/internal/export"
	"tapeshelf/internal/exportpath"
	"tapeshelf/internal/logging"
	"tapeshelf/internal/notifications"
	"tapeshelf/internal/preflight"
)

// pathFlags override the configured catalog and roots for one command.
type pathFlags struct {
	catalog    string
	audioRoot  string
	outputRoot string
}

func (f *pathFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "Catalog TSV path (overrides paths.catalog)")
	cmd.Flags().StringVar(&f.audioRoot, "audio-root", "", "Directory holding the source recordings")
	cmd.Flags().StringVar(&f.outputRoot, "output-root", "", "Directory receiving exported sessions")
}

// apply expands the flags onto cfg. The output root flag targets the root the
// policy writes under.
func (f *pathFlags) apply(cfg *config.Config, policy export.Policy) error {
	outputDst := &cfg.Paths.OutputRoot
	if policy.Mode == exportpath.Final && cfg.Paths.FinalRoot != "" {
		outputDst = &cfg.Paths.FinalRoot
	}
	overrides := []struct {
		value string
		dst   *string
	}{
		{f.catalog, &cfg.Paths.Catalog},
		{f.audioRoot, &cfg.Paths.AudioRoot},
		{f.outputRoot, outputDst},
	}
	for _, o := range overrides {
		if strings.TrimSpace(o.value) == "" {
			continue
		}
		expanded, err := config.ExpandPath(o.value)
		if err != nil {
			return err
		}
		*o.dst = expanded
	}
	return nil
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export catalogued sessions",
	}
	exportCmd.AddCommand(newExportPolicyCommand(ctx, "segments",
		"Slice raw recordings into numbered session WAV and M4A files"))
	exportCmd.AddCommand(newExportPolicyCommand(ctx, "final",
		"Export finished sessions under their catalog names with MP3 copies"))
	return exportCmd
}

func newExportPolicyCommand(ctx *commandContext, name, short string) *cobra.Command {
	var paths pathFlags
	var batchSize int
	var workers int
	var tolerateMissing bool

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			policy, err := export.ForConfig(cfg, name)
			if err != nil {
				return err
			}
			if err := paths.apply(cfg, policy); err != nil {
				return err
			}
			if batchSize > 0 {
				cfg.Export.BatchSize = batchSize
			}
			if workers > 0 {
				policy.Workers = workers
			}
			if cmd.Flags().Changed("tolerate-missing") {
				policy.TolerateMissing = tolerateMissing
			}
			if err := cfg.RequireExportPaths(); err != nil {
				return err
			}
			if err := preflight.CheckExportPaths(cfg, export.OutputRoot(cfg, policy)); err != nil {
				return err
			}

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			runID := uuid.NewString()
			runCtx := logging.WithRunID(cmd.Context(), runID)
			deps := export.Deps{Logger: logger}

			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				if err := store.BeginRun(runCtx, runID, policy.Name, time.Now()); err != nil {
					return err
				}
				deps.Recorder = store
			}

			report, runErr := export.Run(runCtx, cfg, policy, deps)
			if report.RunID == "" {
				report.RunID = runID
			}
			if store != nil {
				if err := store.FinishRun(runCtx, report, runErr); err != nil {
					logging.WarnWithContext(logger, "journal finish failed", "journal_write_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check state_dir permissions"),
						logging.String(logging.FieldImpact, "history for this run is incomplete"),
					)
				}
			}

			notifyExport(runCtx, notifications.NewService(cfg), logger, report, runErr)
			printExportReport(cmd.OutOrStdout(), report, shouldColorize(cmd.OutOrStdout()))
			return runErr
		},
	}

	paths.register(cmd)
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Recordings decoded per batch (overrides export.batch_size)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent session exports")
	cmd.Flags().BoolVar(&tolerateMissing, "tolerate-missing", false, "Skip recordings whose source file is missing instead of stopping")
	return cmd
}

func notifyExport(ctx context.Context, notifier notifications.Service, logger *slog.Logger, report export.Report, runErr error) {
	var err error
	if runErr != nil {
		err = notifier.NotifyExportFailed(ctx, report.Policy, runErr)
	} else {
		err = notifier.NotifyExportCompleted(ctx, notifications.ExportSummary{
			Policy:   report.Policy,
			Pending:  report.PendingRecordings,
			Exported: report.Exported,
			Skipped:  report.Skipped,
			Failed:   report.Failed,
			Elapsed:  report.Elapsed,
		})
	}
	if err != nil {
		logging.WarnWithContext(logger, "export notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		)
	}
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var paths pathFlags
	var policyName string
	var showAll bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Report which sessions still need export without touching audio",
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
			if err := paths.apply(cfg, policy); err != nil {
				return err
			}
			if err := cfg.RequireExportPaths(); err != nil {
				return err
			}
			result, err := export.ScanCatalog(cfg, policy)
			if err != nil {
				return err
			}
			printScan(cmd.OutOrStdout(), result, showAll)
			return nil
		},
	}

	paths.register(cmd)
	cmd.Flags().StringVar(&policyName, "policy", "segments", "Export policy to scan for (segments or final)")
	cmd.Flags().BoolVar(&showAll, "all", false, "List complete sessions as well as pending ones")
	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent export runs from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("export journal is disabled (journal.enabled = false)")
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), runs)
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output runs as JSON")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "List the session outcomes of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if store == nil {
				return fmt.Errorf("export journal is disabled (journal.enabled = false)")
			}
			defer store.Close()

			exports, err := store.RunExports(cmd.Context(), strings.TrimSpace(args[0]), failedOnly)
			if err != nil {
				return err
			}
			printRunExports(cmd.OutOrStdout(), exports)
			return nil
		},
	}
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only list failed sessions")
	return cmd
}
