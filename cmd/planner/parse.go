// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Najam-Usman/uiuc-course-planner/internal/audit"
	"github.com/Najam-Usman/uiuc-course-planner/internal/parser"
	"github.com/Najam-Usman/uiuc-course-planner/internal/secrets"
	"github.com/Najam-Usman/uiuc-course-planner/internal/store"
	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse <audit.pdf>",
	Short: "Run the audit parser on a degree-audit PDF",
	Long: `Parse runs the external audit parser on a PDF and writes the parsed
audit as JSON. The parser runs through a local Python installation, a
container image, or a remote parse service (--backend).

The remote backend authenticates with .secrets/parser-api-token or the
PLANNER_PARSER_TOKEN environment variable.

With --save the parsed audit is also stored for the current user.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	pdfPath := args[0]
	ctx := cmd.Context()

	pcfg := cfg.Parser
	if cmd.Flags().Changed("backend") {
		b, _ := cmd.Flags().GetString("backend")
		pcfg.Backend = types.ParserBackend(b)
	}

	token := loadedSecrets.Get(secrets.ParserToken, "PLANNER_PARSER_TOKEN")
	p, err := parser.New(ctx, pcfg, token, logger)
	if err != nil {
		return err
	}

	raw, err := p.Parse(ctx, pdfPath)
	if err != nil {
		return err
	}

	a, err := audit.Decode(raw)
	if err != nil {
		return fmt.Errorf("decoding parser output: %w", err)
	}
	for _, w := range a.Warnings {
		logger.Warn("parser output decoded with warnings", zap.String("pdf", pdfPath), zap.String("warning", w))
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return fmt.Errorf("formatting parser output: %w", err)
	}
	pretty.WriteByte('\n')

	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		if err := os.WriteFile(output, pretty.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d sections, %d courses)\n", output, len(a.Sections), len(a.Courses))
	} else if _, err := cmd.OutOrStdout().Write(pretty.Bytes()); err != nil {
		return err
	}

	save, _ := cmd.Flags().GetBool("save")
	if !save {
		return nil
	}
	noSections, _ := cmd.Flags().GetBool("no-sections")

	s, err := store.Open(cfg.Store.DataDir, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.Save(ctx, cfg.Store.UserID, a, !noSections)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved audit %s for %s\n", rec.ID, rec.UserID)
	return nil
}

func init() {
	parseCmd.Flags().StringP("output", "o", "", "write the parsed audit to this file instead of stdout")
	parseCmd.Flags().String("backend", "", "parser backend: python, container, or http (default from config)")
	parseCmd.Flags().Bool("save", false, "store the parsed audit for the current user")
	parseCmd.Flags().Bool("no-sections", false, "with --save, drop raw requirement sections")

	rootCmd.AddCommand(parseCmd)
}
