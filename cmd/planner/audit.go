// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Najam-Usman/uiuc-course-planner/internal/audit"
	"github.com/Najam-Usman/uiuc-course-planner/internal/report"
	"github.com/Najam-Usman/uiuc-course-planner/internal/store"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Manage saved audits (save, latest, list, delete, export, needs)",
	Long: `Audit keeps a per-user history of parsed degree audits in a local
SQLite database under the data directory. Use subcommands to save an
audit, show or list saved ones, and recompute needs from the latest.`,
}

// --- save subcommand ---

var auditSaveCmd = &cobra.Command{
	Use:   "save <audit.json|audit.yaml>",
	Short: "Save a parsed audit for the current user",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditSave,
}

func runAuditSave(cmd *cobra.Command, args []string) error {
	a, err := audit.Load(args[0])
	if err != nil {
		return err
	}
	noSections, _ := cmd.Flags().GetBool("no-sections")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.Save(cmd.Context(), cfg.Store.UserID, a, !noSections)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s for %s (%d completed, %d in progress, %d ignored)\n",
		rec.ID, rec.UserID, rec.Stats.CoursesCompleted, rec.Stats.CoursesInProgress, rec.Stats.CoursesIgnored)
	return nil
}

// --- latest subcommand ---

var auditLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recently saved audit",
	Args:  cobra.NoArgs,
	RunE:  runAuditLatest,
}

func runAuditLatest(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.Latest(cmd.Context(), cfg.Store.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no audit saved for %s: run \"planner audit save\" first", cfg.Store.UserID)
	}
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	switch format {
	case formatJSON:
		return writeJSON(cmd.OutOrStdout(), rec)
	case formatYAML:
		return writeYAML(cmd.OutOrStdout(), rec)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:        %s\n", rec.ID)
	fmt.Fprintf(out, "User:      %s\n", rec.UserID)
	fmt.Fprintf(out, "Program:   %s\n", rec.Meta.Program)
	fmt.Fprintf(out, "Degree:    %s\n", rec.Meta.Degree)
	fmt.Fprintf(out, "Catalog:   %s\n", rec.Meta.CatalogYear)
	fmt.Fprintf(out, "Saved:     %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "Courses:   %d completed, %d in progress, %d ignored\n",
		rec.Stats.CoursesCompleted, rec.Stats.CoursesInProgress, rec.Stats.CoursesIgnored)
	fmt.Fprintf(out, "Sections:  %d\n", len(rec.Sections))
	return nil
}

// --- list subcommand ---

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved audits, newest first",
	Args:  cobra.NoArgs,
	RunE:  runAuditList,
}

func runAuditList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.List(cmd.Context(), cfg.Store.UserID, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No audits saved.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSAVED\tPROGRAM\tCATALOG\tSECTIONS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Meta.Program, r.Meta.CatalogYear, len(r.Sections))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d audits\n", len(records))
	return nil
}

// --- delete subcommand ---

var auditDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved audit",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditDelete,
}

func runAuditDelete(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}

// --- export subcommand ---

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every saved audit of the current user",
	Args:  cobra.NoArgs,
	RunE:  runAuditExport,
}

func runAuditExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	switch format {
	case formatYAML:
		return s.ExportYAML(cmd.Context(), cfg.Store.UserID, cmd.OutOrStdout())
	case formatJSON:
		return s.ExportJSON(cmd.Context(), cfg.Store.UserID, cmd.OutOrStdout())
	default:
		return fmt.Errorf("unsupported export format %q: use yaml or json", format)
	}
}

// --- needs subcommand ---

var auditNeedsCmd = &cobra.Command{
	Use:   "needs",
	Short: "Recompute needs from the latest saved audit",
	Args:  cobra.NoArgs,
	RunE:  runAuditNeeds,
}

func runAuditNeeds(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	takenList, _ := cmd.Flags().GetStringSlice("taken")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.Latest(cmd.Context(), cfg.Store.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no audit saved for %s: run \"planner audit save\" first", cfg.Store.UserID)
	}
	if err != nil {
		return err
	}
	if rec.Sections == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "audit %s was saved without sections; needs cannot be recomputed\n", rec.ID)
	}

	a := rec.Audit()
	p := report.Progress{
		Meta:       a.Meta,
		Counters:   a.Counters,
		ImportedAt: rec.CreatedAt,
		Needs:      audit.Needs(a, audit.ParseTaken(takenList)),
	}
	return writeNeeds(cmd.OutOrStdout(), p, format)
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.Store.DataDir, logger)
}

func init() {
	auditSaveCmd.Flags().Bool("no-sections", false, "drop raw requirement sections")
	auditLatestCmd.Flags().StringP("format", "f", formatText, "output format: text, json, or yaml")
	auditListCmd.Flags().Int("limit", 20, "maximum number of audits to list (0 for all)")
	auditExportCmd.Flags().StringP("format", "f", formatYAML, "export format: yaml or json")
	auditNeedsCmd.Flags().StringP("format", "f", formatText, "output format: text, json, or yaml")
	auditNeedsCmd.Flags().StringSlice("taken", nil, "extra taken courses")

	auditCmd.AddCommand(auditSaveCmd)
	auditCmd.AddCommand(auditLatestCmd)
	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditDeleteCmd)
	auditCmd.AddCommand(auditExportCmd)
	auditCmd.AddCommand(auditNeedsCmd)
	rootCmd.AddCommand(auditCmd)
}
