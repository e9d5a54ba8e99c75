// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

// parseSnippet is passed to the interpreter with -c; the PDF path is argv[1].
const parseSnippet = `
from audit_parser.parser import parse
from dataclasses import asdict
import json, sys
pa = parse(sys.argv[1])
print(json.dumps(asdict(pa), ensure_ascii=False))
`

// fallbackInterpreters are tried in order after any configured interpreter.
var fallbackInterpreters = []string{
	"/opt/venv/bin/python",
	"/usr/bin/python3",
	"/usr/local/bin/python3",
	"python3",
	"python",
}

// PythonParser runs the audit_parser package with a local Python interpreter.
type PythonParser struct {
	python    string
	parserDir string
	exec      executor
	logger    *zap.Logger
}

// NewPythonParser creates a parser that imports audit_parser from
// cfg.ParserDir. The interpreter is resolved on first use.
func NewPythonParser(cfg types.ParserConfig, logger *zap.Logger) *PythonParser {
	return newPythonParser(cfg, osExecutor{}, logger)
}

func newPythonParser(cfg types.ParserConfig, ex executor, logger *zap.Logger) *PythonParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PythonParser{
		python:    cfg.Python,
		parserDir: cfg.ParserDir,
		exec:      ex,
		logger:    logger,
	}
}

// Interpreter returns the first candidate that answers "-V".
func (p *PythonParser) Interpreter(ctx context.Context) (string, error) {
	candidates := make([]string, 0, len(fallbackInterpreters)+2)
	for _, c := range []string{p.python, os.Getenv("PYTHON")} {
		if c != "" {
			candidates = append(candidates, c)
		}
	}
	candidates = append(candidates, fallbackInterpreters...)

	for _, py := range candidates {
		if err := runSilent(ctx, p.exec, py, "-V"); err == nil {
			p.logger.Debug("python interpreter resolved", zap.String("python", py))
			return py, nil
		}
	}
	return "", fmt.Errorf("no working Python interpreter found (tried %s)", strings.Join(candidates, ", "))
}

// Parse runs the parser on pdfPath and returns its JSON output.
func (p *PythonParser) Parse(ctx context.Context, pdfPath string) ([]byte, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, fmt.Errorf("audit PDF %s: %w", pdfPath, err)
	}
	absPDF, err := filepath.Abs(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", pdfPath, err)
	}
	parserDir, err := filepath.Abs(p.parserDir)
	if err != nil {
		return nil, fmt.Errorf("resolving parser directory %s: %w", p.parserDir, err)
	}

	python, err := p.Interpreter(ctx)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	c := command{
		name: python,
		args: []string{"-c", parseSnippet, absPDF},
		dir:  parserDir,
		env:  append(os.Environ(), "PYTHONPATH="+parserDir),
	}

	p.logger.Info("running audit parser", zap.String("python", python), zap.String("pdf", absPDF))
	if err := p.exec.Run(ctx, c, &stdout, &stderr); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("audit parser failed: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("audit parser failed: %w", err)
	}

	return checkOutput(stdout.Bytes(), pdfPath)
}
