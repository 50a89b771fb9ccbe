// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sync"
)

// MemoryWorkbook keeps every tab in process memory.
type MemoryWorkbook struct {
	mu     sync.Mutex
	tables map[string]*MemoryTable
}

func NewMemoryWorkbook() *MemoryWorkbook {
	return &MemoryWorkbook{tables: make(map[string]*MemoryTable)}
}

// SeedCSV replaces the named tab with the rows read from r.
func (w *MemoryWorkbook) SeedCSV(title string, r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read seed csv: %w", err)
	}
	w.Set(title, rows)
	return nil
}

// Set replaces the named tab with a copy of rows.
func (w *MemoryWorkbook) Set(title string, rows [][]string) *MemoryTable {
	t := &MemoryTable{}
	for _, r := range rows {
		t.rows = append(t.rows, append([]string(nil), r...))
		if len(r) > t.cols {
			t.cols = len(r)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.tables[title] = t
	return t
}

func (w *MemoryWorkbook) Worksheet(_ context.Context, title string) (Table, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.tables[title]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoWorksheet, title)
	}
	return t, nil
}

func (w *MemoryWorkbook) AddWorksheet(_ context.Context, title string) (Table, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.tables[title]; ok {
		return t, nil
	}
	t := &MemoryTable{}
	w.tables[title] = t
	return t, nil
}

func (w *MemoryWorkbook) Close() error { return nil }

// MemoryTable is a mutex-guarded grid of strings.
type MemoryTable struct {
	mu   sync.RWMutex
	rows [][]string
	cols int
}

func (t *MemoryTable) Values(_ context.Context) ([][]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (t *MemoryTable) Row(_ context.Context, row int) ([]string, error) {
	if err := checkAddress(row, 1); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row > len(t.rows) {
		return nil, nil
	}
	return append([]string(nil), t.rows[row-1]...), nil
}

func (t *MemoryTable) Cell(_ context.Context, row, col int) (string, error) {
	if err := checkAddress(row, col); err != nil {
		return "", err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row > len(t.rows) || col > len(t.rows[row-1]) {
		return "", nil
	}
	return t.rows[row-1][col-1], nil
}

func (t *MemoryTable) UpdateCell(ctx context.Context, row, col int, value string) error {
	return t.UpdateRow(ctx, row, col, []string{value})
}

func (t *MemoryTable) UpdateRow(_ context.Context, row, col int, values []string) error {
	if err := checkAddress(row, col); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for len(t.rows) < row {
		t.rows = append(t.rows, nil)
	}
	r := t.rows[row-1]
	for len(r) < col-1+len(values) {
		r = append(r, "")
	}
	copy(r[col-1:], values)
	t.rows[row-1] = r
	if len(r) > t.cols {
		t.cols = len(r)
	}
	return nil
}

func (t *MemoryTable) AppendRow(_ context.Context, values []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, append([]string(nil), values...))
	if len(values) > t.cols {
		t.cols = len(values)
	}
	return nil
}

func (t *MemoryTable) ColCount(_ context.Context) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cols, nil
}

func (t *MemoryTable) AddCols(_ context.Context, n int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cols += n
	return nil
}
