// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes every audit saved for userID to w, newest first.
func (s *Store) ExportYAML(ctx context.Context, userID string, w io.Writer) error {
	records, err := s.exportRecords(ctx, userID)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes every audit saved for userID to w, newest first.
func (s *Store) ExportJSON(ctx context.Context, userID string, w io.Writer) error {
	records, err := s.exportRecords(ctx, userID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) exportRecords(ctx context.Context, userID string) ([]*Record, error) {
	records, err := s.List(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if records == nil {
		records = []*Record{}
	}
	return records, nil
}
