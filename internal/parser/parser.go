// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parser runs the external degree-audit parser that turns an audit
// PDF into JSON. The parser itself lives outside this repository; this
// package only locates it, invokes it, and checks that it produced JSON.
//
// Three backends are supported: a local Python installation of the
// audit_parser package, a container image that reads the PDF on stdin, and
// a remote parse service reached over HTTP.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

// Parser turns an audit PDF into the parser's raw JSON document.
type Parser interface {
	Parse(ctx context.Context, pdfPath string) ([]byte, error)
}

// New returns the parser backend selected by cfg. token authenticates
// against a remote parse service and is ignored by local backends.
func New(ctx context.Context, cfg types.ParserConfig, token string, logger *zap.Logger) (Parser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case types.ParserPython, "":
		return NewPythonParser(cfg, logger), nil
	case types.ParserContainer:
		return NewContainerParser(ctx, cfg.Image, logger)
	case types.ParserHTTP:
		client := &http.Client{Timeout: cfg.Timeout}
		return NewRemoteParser(client, cfg, token, logger)
	default:
		return nil, fmt.Errorf("unsupported parser backend %q", cfg.Backend)
	}
}

// checkOutput rejects empty or non-JSON parser output.
func checkOutput(out []byte, pdfPath string) ([]byte, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("audit parser produced empty output for %s", pdfPath)
	}
	if !json.Valid(out) {
		return nil, fmt.Errorf("audit parser produced invalid JSON for %s", pdfPath)
	}
	return out, nil
}
