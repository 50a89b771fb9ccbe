// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package navigator picks the next patient a reviewer has not answered.
package navigator

import (
	"context"

	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/submissions"
)

// Next returns the first row of rows not in done, starting just after after
// and wrapping around. An after that is not in rows starts at the beginning.
// rows must be ascending. ok is false when every row is done.
func Next(rows []int, done map[int]bool, after int) (row int, ok bool) {
	start := 0
	for i, r := range rows {
		if r == after {
			start = i + 1
			break
		}
	}

	n := len(rows)
	for k := 0; k < n; k++ {
		r := rows[(start+k)%n]
		if !done[r] {
			return r, true
		}
	}
	return 0, false
}

// Rows lists the patient rows in ascending order.
type Rows interface {
	RowNumbers(ctx context.Context) ([]int, error)
}

type Navigator struct {
	rows   Rows
	policy submissions.Policy
}

func New(rows Rows, policy submissions.Policy) *Navigator {
	return &Navigator{rows: rows, policy: policy}
}

// Next finds the next row for email after the given row (0 for none).
func (n *Navigator) Next(ctx context.Context, email string, after int) (int, bool, error) {
	rows, err := n.rows.RowNumbers(ctx)
	if err != nil {
		return 0, false, err
	}
	done, err := n.policy.DoneRows(ctx, email)
	if err != nil {
		return 0, false, err
	}
	row, ok := Next(rows, done, after)
	return row, ok, nil
}

// Progress reports how many rows email has submitted out of the total and
// where they should go next.
func (n *Navigator) Progress(ctx context.Context, email string) (models.ProgressResponse, error) {
	rows, err := n.rows.RowNumbers(ctx)
	if err != nil {
		return models.ProgressResponse{}, err
	}
	mine, err := n.policy.UserRows(ctx, email)
	if err != nil {
		return models.ProgressResponse{}, err
	}
	done, err := n.policy.DoneRows(ctx, email)
	if err != nil {
		return models.ProgressResponse{}, err
	}

	resp := models.ProgressResponse{OK: true, Completed: len(mine), Total: len(rows)}
	if row, ok := Next(rows, done, 0); ok {
		resp.NextRow = &row
	}
	return resp, nil
}
