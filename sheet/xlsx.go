// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/tealeg/xlsx"
)

// XLSXWorkbook is a workbook file on local disk. Every write saves the file.
type XLSXWorkbook struct {
	mu   sync.Mutex
	path string
	file *xlsx.File
}

// OpenXLSX opens the workbook at path, creating an empty one when it does not exist.
func OpenXLSX(path string) (*XLSXWorkbook, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &XLSXWorkbook{path: path, file: xlsx.NewFile()}, nil
	}
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &XLSXWorkbook{path: path, file: f}, nil
}

func (w *XLSXWorkbook) Worksheet(_ context.Context, title string) (Table, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.file.Sheet[title]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoWorksheet, title)
	}
	return &xlsxTable{wb: w, sheet: s}, nil
}

func (w *XLSXWorkbook) AddWorksheet(_ context.Context, title string) (Table, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if s, ok := w.file.Sheet[title]; ok {
		return &xlsxTable{wb: w, sheet: s}, nil
	}
	s, err := w.file.AddSheet(title)
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet %s: %w", title, err)
	}
	if err := w.save(); err != nil {
		return nil, err
	}
	return &xlsxTable{wb: w, sheet: s}, nil
}

func (w *XLSXWorkbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := os.Stat(w.path); errors.Is(err, fs.ErrNotExist) && len(w.file.Sheets) == 0 {
		return nil
	}
	return w.save()
}

// save must be called with mu held
func (w *XLSXWorkbook) save() error {
	if err := w.file.Save(w.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}
	return nil
}

type xlsxTable struct {
	wb    *XLSXWorkbook
	sheet *xlsx.Sheet
}

func cellString(r *xlsx.Row, col int) string {
	if r == nil || col > len(r.Cells) || r.Cells[col-1] == nil {
		return ""
	}
	return r.Cells[col-1].String()
}

func rowStrings(r *xlsx.Row) []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.Cells))
	for i := range r.Cells {
		out[i] = cellString(r, i+1)
	}
	return out
}

func (t *xlsxTable) Values(_ context.Context) ([][]string, error) {
	t.wb.mu.Lock()
	defer t.wb.mu.Unlock()
	out := make([][]string, len(t.sheet.Rows))
	for i, r := range t.sheet.Rows {
		out[i] = rowStrings(r)
	}
	return out, nil
}

func (t *xlsxTable) Row(_ context.Context, row int) ([]string, error) {
	if err := checkAddress(row, 1); err != nil {
		return nil, err
	}
	t.wb.mu.Lock()
	defer t.wb.mu.Unlock()
	if row > len(t.sheet.Rows) {
		return nil, nil
	}
	return rowStrings(t.sheet.Rows[row-1]), nil
}

func (t *xlsxTable) Cell(_ context.Context, row, col int) (string, error) {
	if err := checkAddress(row, col); err != nil {
		return "", err
	}
	t.wb.mu.Lock()
	defer t.wb.mu.Unlock()
	if row > len(t.sheet.Rows) {
		return "", nil
	}
	return cellString(t.sheet.Rows[row-1], col), nil
}

func (t *xlsxTable) UpdateCell(ctx context.Context, row, col int, value string) error {
	return t.UpdateRow(ctx, row, col, []string{value})
}

func (t *xlsxTable) UpdateRow(_ context.Context, row, col int, values []string) error {
	if err := checkAddress(row, col); err != nil {
		return err
	}
	t.wb.mu.Lock()
	defer t.wb.mu.Unlock()
	for len(t.sheet.Rows) < row {
		t.sheet.AddRow()
	}
	r := t.sheet.Rows[row-1]
	if r == nil {
		r = &xlsx.Row{Sheet: t.sheet}
		t.sheet.Rows[row-1] = r
	}
	for len(r.Cells) < col-1+len(values) {
		r.AddCell()
	}
	for i, v := range values {
		r.Cells[col-1+i].SetString(v)
	}
	return t.wb.save()
}

func (t *xlsxTable) AppendRow(_ context.Context, values []string) error {
	t.wb.mu.Lock()
	defer t.wb.mu.Unlock()
	r := t.sheet.AddRow()
	for _, v := range values {
		r.AddCell().SetString(v)
	}
	return t.wb.save()
}

func (t *xlsxTable) ColCount(_ context.Context) (int, error) {
	t.wb.mu.Lock()
	defer t.wb.mu.Unlock()
	n := t.sheet.MaxCol
	for _, r := range t.sheet.Rows {
		if r != nil && len(r.Cells) > n {
			n = len(r.Cells)
		}
	}
	return n, nil
}

// AddCols is a no-op: workbook files have no fixed grid width.
func (t *xlsxTable) AddCols(_ context.Context, _ int) error {
	return nil
}
