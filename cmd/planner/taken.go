// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Najam-Usman/uiuc-course-planner/internal/audit"
)

var takenCmd = &cobra.Command{
	Use:   "taken <audit.json|audit.yaml>",
	Short: "Print the courses an audit counts as taken",
	Long: `Taken prints the completed and in-progress courses of a parsed audit,
one "SUBJECT NUMBER" per line, sorted. These are the courses needs never
suggests. Use --completed or --in-progress to narrow the list.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaken,
}

func runTaken(cmd *cobra.Command, args []string) error {
	a, err := audit.Load(args[0])
	if err != nil {
		return err
	}

	sets := audit.BuildSatisfiedSets(a.Courses)
	set := sets.Satisfied
	if c, _ := cmd.Flags().GetBool("completed"); c {
		set = sets.Completed
	}
	if ip, _ := cmd.Flags().GetBool("in-progress"); ip {
		set = sets.InProgress
	}

	codes := make([]string, 0, len(set))
	for c := range set {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	out := cmd.OutOrStdout()
	for _, c := range codes {
		fmt.Fprintln(out, c)
	}
	return nil
}

func init() {
	takenCmd.Flags().Bool("completed", false, "only completed courses")
	takenCmd.Flags().Bool("in-progress", false, "only in-progress courses")
	takenCmd.MarkFlagsMutuallyExclusive("completed", "in-progress")

	rootCmd.AddCommand(takenCmd)
}
