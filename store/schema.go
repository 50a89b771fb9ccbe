// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielhkuo/expert-survey/sheet"
)

// Reserved columns of the patients tab
const (
	ColPrediction       = "expert_prediction"
	ColConfidence       = "expert_confidence"
	ColSNOT22           = "expert_SNOT22score_prediction"
	ColReviewerName     = "reviewer_name"
	ColReviewerEmail    = "reviewer_email"
	ColSubmissionStatus = "submission_status"
	ColClaimedBy        = "claimed_by"
	ColClaimedAt        = "claimed_at"
	ColEditCount        = "edit_count"
	ColLastEditedAt     = "last_edited_at"
)

// RequiredColumns are appended to the header, in this order, when missing.
var RequiredColumns = []string{
	ColPrediction,
	ColConfidence,
	ColSNOT22,
	ColReviewerName,
	ColReviewerEmail,
	ColSubmissionStatus,
	ColClaimedBy,
	ColClaimedAt,
	ColEditCount,
	ColLastEditedAt,
}

// Schema maps header names to 1-based column indexes.
type Schema struct {
	Header []string
	index  map[string]int
}

func newSchema(header []string) *Schema {
	s := &Schema{Header: header, index: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := s.index[name]; !dup {
			s.index[name] = i + 1
		}
	}
	return s
}

// Col returns the column of name, or false when the header lacks it.
func (s *Schema) Col(name string) (int, bool) {
	c, ok := s.index[name]
	return c, ok
}

// Get reads the value of column name from a row slice.
func (s *Schema) Get(row []string, name string) string {
	c, ok := s.index[name]
	if !ok || c > len(row) {
		return ""
	}
	return row[c-1]
}

// EnsureColumns reads the header row of t and appends any of required that are
// missing. The header is re-read after a migration. Safe to call repeatedly.
func EnsureColumns(ctx context.Context, t sheet.Table, required []string) (*Schema, error) {
	header, err := t.Row(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	s := newSchema(header)

	var missing []string
	for _, name := range required {
		if _, ok := s.Col(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return s, nil
	}

	need := len(header) + len(missing)
	have, err := t.ColCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read column count: %w", err)
	}
	if have < need {
		if err := t.AddCols(ctx, need-have); err != nil {
			return nil, fmt.Errorf("failed to add columns: %w", err)
		}
	}
	if err := t.UpdateRow(ctx, 1, len(header)+1, missing); err != nil {
		return nil, fmt.Errorf("failed to write missing headers: %w", err)
	}

	header, err = t.Row(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read header: %w", err)
	}
	return newSchema(header), nil
}
