// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Najam-Usman/uiuc-course-planner/internal/httputil"
	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

const parsePath = "/api/audits/parse"

// maxErrorBody bounds how much of a failed response is read into an error.
const maxErrorBody = 64 << 10

// RemoteParser uploads audit PDFs to a parse service.
type RemoteParser struct {
	client     *http.Client
	endpoint   string
	token      string
	userAgent  string
	maxRetries int
	logger     *zap.Logger
}

// NewRemoteParser creates a parser that posts to cfg.BaseURL. token is sent
// as a bearer credential when non-empty.
func NewRemoteParser(client *http.Client, cfg types.ParserConfig, token string, logger *zap.Logger) (*RemoteParser, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote parser requires parser.base_url")
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteParser{
		client:     client,
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + parsePath,
		token:      token,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}, nil
}

// Parse uploads pdfPath as the multipart field "file" and returns the
// service's JSON response.
func (p *RemoteParser) Parse(ctx context.Context, pdfPath string) ([]byte, error) {
	body, contentType, err := multipartPDF(pdfPath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building parse request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	p.logger.Info("uploading audit to parse service", zap.String("endpoint", p.endpoint), zap.Int("bytes", len(body)))
	resp, err := httputil.DoWithRetry(ctx, p.client, req, p.maxRetries, p.logger)
	if err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("parse service returned %d: %s", resp.StatusCode, errorMessage(b))
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading parse response: %w", err)
	}
	return checkOutput(out, pdfPath)
}

func multipartPDF(pdfPath string) ([]byte, string, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading audit PDF %s: %w", pdfPath, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(pdfPath))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, "", fmt.Errorf("writing form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// errorMessage prefers the "error" field of a JSON error body.
func errorMessage(b []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		return s
	}
	return "no response body"
}
