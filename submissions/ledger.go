// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package submissions

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/sheet"
	"github.com/danielhkuo/expert-survey/store"
)

// Columns of the submissions tab
const (
	ColTimestamp     = "timestamp"
	ColReviewerEmail = "reviewer_email"
	ColReviewerName  = "reviewer_name"
	ColRow           = "row"
	ColOutcome       = "outcome"
	ColConfidence    = "confidence"
	ColSNOT22        = "snot22"
)

var LedgerColumns = []string{
	ColTimestamp,
	ColReviewerEmail,
	ColReviewerName,
	ColRow,
	ColOutcome,
	ColConfidence,
	ColSNOT22,
}

// Ledger keeps one row per (reviewer email, patient row) on its own tab.
type Ledger struct {
	table sheet.Table
	Now   func() time.Time

	mu     sync.Mutex
	schema *store.Schema
}

func NewLedger(t sheet.Table) *Ledger {
	return &Ledger{table: t, Now: time.Now}
}

// Migrate writes any missing ledger headers and caches the schema.
func (l *Ledger) Migrate(ctx context.Context) (*store.Schema, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	schema, err := store.EnsureColumns(ctx, l.table, LedgerColumns)
	if err != nil {
		return nil, fmt.Errorf("submissions: %w", err)
	}
	l.schema = schema
	return schema, nil
}

func (l *Ledger) load(ctx context.Context) (*store.Schema, [][]string, error) {
	l.mu.Lock()
	schema := l.schema
	l.mu.Unlock()
	if schema == nil {
		var err error
		if schema, err = l.Migrate(ctx); err != nil {
			return nil, nil, err
		}
	}
	values, err := l.table.Values(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read submissions: %w", err)
	}
	return schema, values, nil
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// find returns the tab row holding (email, row), or 0.
func find(schema *store.Schema, values [][]string, email string, row int) int {
	want := strconv.Itoa(row)
	for r := 2; r <= len(values); r++ {
		vals := values[r-1]
		if sameEmail(schema.Get(vals, ColReviewerEmail), email) &&
			strings.TrimSpace(schema.Get(vals, ColRow)) == want {
			return r
		}
	}
	return 0
}

// Upsert records p for (email, row). An existing entry has only its value
// columns overwritten; otherwise a new entry is appended with the current
// timestamp. It reports whether a new entry was created.
func (l *Ledger) Upsert(ctx context.Context, email, name string, row int, p models.Prediction) (bool, error) {
	schema, values, err := l.load(ctx)
	if err != nil {
		return false, err
	}

	if r := find(schema, values, email, row); r != 0 {
		for _, f := range []store.Field{
			{Name: ColOutcome, Value: p.Outcome},
			{Name: ColConfidence, Value: p.Confidence},
			{Name: ColSNOT22, Value: p.SNOT22},
		} {
			c, _ := schema.Col(f.Name)
			if err := l.table.UpdateCell(ctx, r, c, f.Value); err != nil {
				return false, fmt.Errorf("failed to update submission: %w", err)
			}
		}
		return false, nil
	}

	byName := map[string]string{
		ColTimestamp:     store.FormatTime(l.Now()),
		ColReviewerEmail: email,
		ColReviewerName:  name,
		ColRow:           strconv.Itoa(row),
		ColOutcome:       p.Outcome,
		ColConfidence:    p.Confidence,
		ColSNOT22:        p.SNOT22,
	}
	out := make([]string, len(schema.Header))
	for i, h := range schema.Header {
		out[i] = byName[strings.TrimSpace(h)]
	}
	if err := l.table.AppendRow(ctx, out); err != nil {
		return false, fmt.Errorf("failed to append submission: %w", err)
	}
	return true, nil
}

// UserRows returns the patient rows email has submitted.
func (l *Ledger) UserRows(ctx context.Context, email string) (map[int]bool, error) {
	schema, values, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	rows := make(map[int]bool)
	for r := 2; r <= len(values); r++ {
		vals := values[r-1]
		if !sameEmail(schema.Get(vals, ColReviewerEmail), email) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(schema.Get(vals, ColRow))); err == nil {
			rows[n] = true
		}
	}
	return rows, nil
}

// Get returns email's prediction for row, or nil when there is none.
func (l *Ledger) Get(ctx context.Context, email string, row int) (*models.Prediction, error) {
	schema, values, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	r := find(schema, values, email, row)
	if r == 0 {
		return nil, nil
	}
	vals := values[r-1]
	return &models.Prediction{
		Outcome:    schema.Get(vals, ColOutcome),
		Confidence: schema.Get(vals, ColConfidence),
		SNOT22:     schema.Get(vals, ColSNOT22),
	}, nil
}
