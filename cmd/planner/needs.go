// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
	"golang.org/x/term"

	"github.com/Najam-Usman/uiuc-course-planner/internal/audit"
	"github.com/Najam-Usman/uiuc-course-planner/internal/report"
	"github.com/Najam-Usman/uiuc-course-planner/internal/requirements"
	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var needsCmd = &cobra.Command{
	Use:   "needs [audit.json|audit.yaml]",
	Short: "List the requirements still left on a parsed audit",
	Long: `Needs reads a parsed audit and prints the general-education categories
and major course groups that still need something. Courses the audit marks
completed or in progress are never suggested; --taken adds more.

With --batch, every *.json, *.yaml, and *.yml audit in a directory is
processed concurrently. With --watch, the audit is re-read and the report
printed again each time the file changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNeeds,
}

func runNeeds(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	takenList, _ := cmd.Flags().GetStringSlice("taken")
	extra := audit.ParseTaken(takenList)

	batchDir, _ := cmd.Flags().GetString("batch")
	if batchDir != "" {
		if len(args) > 0 {
			return fmt.Errorf("--batch and an audit file are mutually exclusive")
		}
		return runNeedsBatch(cmd, batchDir, format, extra)
	}

	if len(args) == 0 {
		return fmt.Errorf("audit file required (or use --batch)")
	}
	path := args[0]
	out := cmd.OutOrStdout()

	watch, _ := cmd.Flags().GetBool("watch")
	if watch {
		logger.Info("watching audit", zap.String("path", path))
		return audit.Watch(cmd.Context(), path, logger, func(a *types.ParsedAudit, err error) {
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "reading %s: %v\n", path, err)
				return
			}
			logWarnings(path, a)
			if format == formatText {
				fmt.Fprint(out, "\n")
			}
			if err := writeNeeds(out, progressFor(a, extra), format); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "rendering: %v\n", err)
			}
		})
	}

	a, err := audit.Load(path)
	if err != nil {
		return err
	}
	logWarnings(path, a)
	return writeNeeds(out, progressFor(a, extra), format)
}

func logWarnings(path string, a *types.ParsedAudit) {
	for _, w := range a.Warnings {
		logger.Warn("audit decoded with warnings", zap.String("path", path), zap.String("warning", w))
	}
}

func runNeedsBatch(cmd *cobra.Command, dir, format string, extra requirements.TakenSet) error {
	workers := cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}

	// Progress lines go to stderr when stdout carries machine output.
	progress := cmd.OutOrStdout()
	if format != formatText {
		progress = cmd.ErrOrStderr()
	}

	results, summary, err := audit.ExtractDir(cmd.Context(), dir, workers, extra, progress, logger)
	if err != nil {
		return err
	}

	switch format {
	case formatJSON:
		if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	case formatYAML:
		if err := writeYAML(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d audit(s) failed", summary.Failed)
	}
	return nil
}

func progressFor(a *types.ParsedAudit, extra requirements.TakenSet) report.Progress {
	return report.Progress{
		Meta:     a.Meta,
		Counters: a.Counters,
		Needs:    audit.Needs(a, extra),
	}
}

func writeNeeds(w io.Writer, p report.Progress, format string) error {
	switch format {
	case formatJSON:
		return report.WriteJSON(w, p)
	case formatYAML:
		return report.WriteYAML(w, p)
	default:
		return report.Render(w, p, reportOptions())
	}
}

func reportOptions() report.Options {
	return report.Options{
		SearchBaseURL: cfg.Report.SearchBaseURL,
		Plain:         cfg.Report.Plain || !term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	needsCmd.Flags().StringSlice("taken", nil, `extra taken courses, e.g. --taken "CS 233,CS 341"`)
	needsCmd.Flags().StringP("format", "f", formatText, "output format: text, json, or yaml")
	needsCmd.Flags().Bool("watch", false, "re-run whenever the audit file changes")
	needsCmd.Flags().String("batch", "", "extract needs for every audit in this directory")
	needsCmd.Flags().Int("workers", 4, "concurrent extractions for --batch")
	needsCmd.Flags().Bool("plain", false, "disable colours")
	needsCmd.Flags().String("base-url", "", "catalog base URL prefixed to search links")

	viper.BindPFlag("report.plain", needsCmd.Flags().Lookup("plain"))
	viper.BindPFlag("report.search_base_url", needsCmd.Flags().Lookup("base-url"))

	rootCmd.AddCommand(needsCmd)
}
