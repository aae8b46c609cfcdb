package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"tapeshelf/internal/export"
	"tapeshelf/internal/journal"
)

func printExportReport(out io.Writer, report export.Report, colorize bool) {
	fmt.Fprintf(out, "files needing export: %d\n", report.PendingRecordings)
	fmt.Fprintln(out)

	fmt.Fprintln(out, renderSummary("Export "+report.Policy, [][2]string{
		{"Run", report.RunID},
		{"Recordings", strconv.Itoa(report.Recordings)},
		{"Already complete", strconv.Itoa(report.Complete)},
		{"Pending sessions", strconv.Itoa(report.PendingSessions)},
		{"Batches", strconv.Itoa(report.Batches)},
		{"Exported", strconv.Itoa(report.Exported)},
		{"Skipped", strconv.Itoa(report.Skipped)},
		{"Failed", strconv.Itoa(report.Failed)},
		{"Elapsed", report.Elapsed.Round(time.Second).String()},
	}))

	if len(report.MissingSources) > 0 {
		fmt.Fprintln(out)
		printSection(out, "Missing sources", colorize)
		for _, path := range report.MissingSources {
			fmt.Fprintln(out, renderStatusLine("missing", statusWarn, path, colorize))
		}
	}

	if len(report.Errors) == 0 {
		return
	}
	fmt.Fprintln(out)
	printSection(out, fmt.Sprintf("Errors (%d)", len(report.Errors)), colorize)
	errRows := make([][]string, 0, len(report.Errors))
	for _, entry := range report.Errors {
		msg := ""
		if entry.Err != nil {
			msg = entry.Err.Error()
		}
		errRows = append(errRows, []string{entry.RecordingKey, entry.Session, entry.Kind, msg})
	}
	fmt.Fprintln(out, renderTable([]string{"Recording", "Session", "Kind", "Error"}, errRows, nil))
}

func printScan(out io.Writer, result export.ScanResult, showAll bool) {
	fmt.Fprintf(out, "files needing export: %d\n", len(result.Pending))
	fmt.Fprintf(out, "recordings: %d complete: %d pending sessions: %d\n",
		result.Recordings, result.Complete, result.PendingSessions)

	rows := make([][]string, 0, len(result.Sessions))
	for _, s := range result.Sessions {
		if !s.Pending && !showAll {
			continue
		}
		state := "complete"
		target := s.Paths.Primary
		switch {
		case s.Err != nil:
			state = "error"
			target = s.Err.Error()
		case s.Pending:
			state = "pending"
		}
		rows = append(rows, []string{s.RecordingKey, s.Session, state, target})
	}
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(out, renderTable([]string{"Recording", "Session", "State", "Output"}, rows, nil))
}

func printRuns(out io.Writer, runs []journal.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No export runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		finished := "running"
		if r.Finished() {
			finished = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		rows = append(rows, []string{
			r.ID,
			r.Policy,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			finished,
			strconv.Itoa(r.Exported),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
			truncate(r.Error, 60),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Policy", "Started", "Duration", "Exported", "Skipped", "Failed", "Error"},
		rows,
		[]text.Align{text.AlignLeft, text.AlignLeft, text.AlignLeft, text.AlignRight, text.AlignRight, text.AlignRight, text.AlignRight},
	))
}

func printRunExports(out io.Writer, exports []journal.Export) {
	if len(exports) == 0 {
		fmt.Fprintln(out, "No sessions recorded for this run")
		return
	}
	rows := make([][]string, 0, len(exports))
	for _, e := range exports {
		detail := e.Reason
		if e.Error != "" {
			detail = e.ErrorKind + ": " + e.Error
		}
		rows = append(rows, []string{e.RecordingKey, e.Session, e.Status, truncate(detail, 80)})
	}
	fmt.Fprintln(out, renderTable([]string{"Recording", "Session", "Status", "Detail"}, rows, nil))
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
