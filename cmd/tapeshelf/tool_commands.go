package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tapeshelf/internal/catalog"
	"tapeshelf/internal/catalogsync"
	"tapeshelf/internal/config"
	"tapeshelf/internal/consolidate"
	"tapeshelf/internal/durations"
	"tapeshelf/internal/export"
	"tapeshelf/internal/exportpath"
	"tapeshelf/internal/fileutil"
	"tapeshelf/internal/manifest"
	"tapeshelf/internal/notifications"
	"tapeshelf/internal/subtitles"
)

func newConsolidateCommand(ctx *commandContext) *cobra.Command {
	var catalogPath string
	var root string
	var dest string

	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Copy final exports into a tree named by session filenames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if catalogPath != "" {
				if cfg.Paths.Catalog, err = config.ExpandPath(catalogPath); err != nil {
					return err
				}
			}
			finalRoot := export.OutputRoot(cfg, export.Final())
			if root != "" {
				if finalRoot, err = config.ExpandPath(root); err != nil {
					return err
				}
			}
			target, err := config.ExpandPath(dest)
			if err != nil {
				return err
			}
			if strings.TrimSpace(target) == "" {
				return errors.New("--dest is required")
			}
			if strings.TrimSpace(cfg.Paths.Catalog) == "" {
				return errors.New("catalog path is required (paths.catalog or --catalog)")
			}

			cat, err := catalog.Parse(cfg.Paths.Catalog, true)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			c := &consolidate.Consolidator{
				Root:     finalRoot,
				Dest:     target,
				Resolver: exportpath.Resolver{SynchronizedStatus: cfg.Export.SynchronizedStatus},
				Logger:   logger,
			}
			report, err := c.Run(cmd.Context(), cat.Processed())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "copied: %d existing: %d missing: %d failed: %d\n",
				report.Copied, report.Existing, report.Missing, report.Failed)
			var failed [][]string
			for _, item := range report.Items {
				if item.Result == consolidate.Failed {
					failed = append(failed, []string{item.RecordingKey, item.Session, item.Dest, item.Err.Error()})
				}
			}
			if len(failed) > 0 {
				fmt.Fprintln(out, renderTable([]string{"Recording", "Session", "Destination", "Error"}, failed, nil))
				return fmt.Errorf("%d files could not be consolidated", len(failed))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog TSV path (overrides paths.catalog)")
	cmd.Flags().StringVar(&root, "root", "", "Final export root (defaults to paths.final_root)")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination directory")
	return cmd
}

func newManifestCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:         "manifest <root>",
		Short:       "List the files under a directory as filename/folder TSV",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			entries, err := manifest.List(root)
			if err != nil {
				return err
			}
			if outputPath == "" {
				return manifest.Write(cmd.OutOrStdout(), entries)
			}
			var b strings.Builder
			if err := manifest.Write(&b, entries); err != nil {
				return err
			}
			if err := fileutil.WriteAtomic(outputPath, []byte(b.String())); err != nil {
				return fmt.Errorf("write manifest: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d entries to %s\n", len(entries), outputPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the manifest to a file instead of stdout")
	return cmd
}

func newSRTCommand() *cobra.Command {
	srtCmd := &cobra.Command{
		Use:         "srt",
		Short:       "Subtitle utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	srtCmd.AddCommand(newSRTRealignCommand())
	return srtCmd
}

func newSRTRealignCommand() *cobra.Command {
	var txtPath string
	var outPath string

	cmd := &cobra.Command{
		Use:   "realign <file.srt|dir>",
		Short: "Replace subtitle text with the lines of the sibling .txt file",
		Long: "Replace each cue's text with the matching line of a transcription file.\n" +
			"Given a directory, every .srt with a sibling .txt is rewritten in place.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			info, err := os.Stat(target)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if info.IsDir() {
				return realignTree(out, target)
			}

			txt := txtPath
			if txt == "" {
				txt = strings.TrimSuffix(target, filepath.Ext(target)) + ".txt"
			}
			dst := outPath
			if dst == "" {
				dst = target
			}
			cues, err := subtitles.Realign(target, txt, dst)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d cues\n", dst, cues)
			return nil
		},
	}
	cmd.Flags().StringVar(&txtPath, "txt", "", "Transcription file (defaults to the .srt's sibling .txt)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output file (defaults to rewriting the .srt)")
	return cmd
}

func realignTree(out io.Writer, root string) error {
	results, err := subtitles.RealignTree(root)
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintln(out, renderStatusLine(filepath.Base(r.SRT), statusError, r.Err.Error(), false))
			continue
		}
		fmt.Fprintln(out, renderStatusLine(filepath.Base(r.SRT), statusOK, fmt.Sprintf("%d cues", r.Cues), false))
	}
	fmt.Fprintf(out, "realigned %d of %d subtitle files\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d subtitle files could not be realigned", failed)
	}
	return nil
}

func newDurationsCommand(ctx *commandContext) *cobra.Command {
	var excludeSuffixes []string
	var excludeFolders []string
	var workers int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "durations <root>",
		Short: "Total the playing time of the audio files under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(root); err != nil {
				return fmt.Errorf("folder %s: %w", root, err)
			}
			result, err := durations.Sum(cmd.Context(), root, durations.Options{
				ExcludeSuffixes: excludeSuffixes,
				ExcludeFolders:  excludeFolders,
				FFprobe:         cfg.FFprobeBinary(),
				Workers:         workers,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if verbose {
				rows := make([][]string, 0, len(result.Files))
				for _, f := range result.Files {
					rel, relErr := filepath.Rel(root, f.Path)
					if relErr != nil {
						rel = f.Path
					}
					rows = append(rows, []string{rel, durations.Format(f.Seconds)})
				}
				if len(rows) > 0 {
					fmt.Fprintln(out, renderTable([]string{"File", "Duration"}, rows, labelValueAligns))
				}
			}
			if len(result.Skipped) > 0 {
				fmt.Fprintf(out, "Skipped files (%d):\n", len(result.Skipped))
				for _, path := range result.Skipped {
					fmt.Fprintf(out, "  - %s\n", path)
				}
			}
			fmt.Fprintf(out, "Total files processed: %d\n", len(result.Files))
			fmt.Fprintf(out, "Total duration: %s\n", durations.Format(result.TotalSeconds))
			fmt.Fprintf(out, "Total duration (seconds): %s\n", strconv.FormatFloat(result.TotalSeconds, 'f', 2, 64))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&excludeSuffixes, "exclude-suffix", []string{"_orig.wav", "_trans.wav"}, "Skip files whose path ends with these suffixes")
	cmd.Flags().StringSliceVar(&excludeFolders, "exclude-folder", nil, "Skip files inside folders with these names")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent ffprobe processes")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every measured file")
	return cmd
}

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Catalog utilities",
	}
	catalogCmd.AddCommand(newCatalogSyncCommand(ctx))
	return catalogCmd
}

func newCatalogSyncCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download the published sheets and rebuild the archive listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if outputPath != "" {
				if cfg.Sync.OutputPath, err = config.ExpandPath(outputPath); err != nil {
					return err
				}
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			result, err := catalogsync.New(cfg, logger).Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(result.Groups))
			for _, g := range result.Groups {
				rows = append(rows, []string{g.Status, strconv.Itoa(len(g.Entries))})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"Status", "Sessions"}, rows, labelValueAligns))
			}
			fmt.Fprintf(out, "Wrote %d entries to %s\n", result.Entries(), result.OutputPath)
			if err := notifications.NewService(cfg).NotifyCatalogSynced(cmd.Context(), result.Entries(), result.OutputPath); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: notification failed: %v\n", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Listing path (overrides sync.output_path)")
	return cmd
}
