// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Najam-Usman/uiuc-course-planner/internal/requirements"
	"github.com/Najam-Usman/uiuc-course-planner/pkg/types"
)

const defaultWorkers = 4

// BatchResult is the outcome of extracting needs from one audit file.
type BatchResult struct {
	File  string                `json:"file" yaml:"file"`
	Needs types.ActionableNeeds `json:"needs" yaml:"needs"`
	Error string                `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Failed    int
}

// Total returns the number of audits processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Failed
}

// HasFailures reports whether any audit failed to load.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractDir extracts needs from every .json, .yaml, and .yml audit in dir,
// running up to workers extractions at once. A file that fails to load is
// recorded and does not stop the batch. Results are ordered by file name and
// one progress line per file is written to w.
func ExtractDir(ctx context.Context, dir string, workers int, extra requirements.TakenSet, w io.Writer, logger *zap.Logger) ([]BatchResult, BatchSummary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, BatchSummary{}, fmt.Errorf("reading audit directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	results := make([]BatchResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = BatchResult{File: name}

			a, err := Load(filepath.Join(dir, name))
			if err != nil {
				logger.Warn("audit load failed", zap.String("file", name), zap.Error(err))
				results[i].Error = err.Error()
				return nil
			}
			results[i].Needs = Needs(a, extra)
			logger.Debug("audit extracted",
				zap.String("file", name),
				zap.Int("geneds", len(results[i].Needs.GenEds)),
				zap.Int("courses", len(results[i].Needs.Courses)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, BatchSummary{}, err
	}

	var summary BatchSummary
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "failed    %s: %s\n", r.File, r.Error)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "extracted %s (%d gen-ed, %d course needs)\n",
			r.File, len(r.Needs.GenEds), len(r.Needs.Courses))
		summary.Extracted++
	}
	fmt.Fprintf(w, "\nextracted: %d, failed: %d\n", summary.Extracted, summary.Failed)

	return results, summary, nil
}
