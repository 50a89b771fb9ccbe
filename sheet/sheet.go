// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoWorksheet  = errors.New("worksheet not found")
	ErrInvalidRange = errors.New("invalid cell address")
)

// Workbook is an open spreadsheet holding one or more named tabs.
// Callers construct one at startup and Close it on shutdown.
type Workbook interface {
	Worksheet(ctx context.Context, title string) (Table, error)
	AddWorksheet(ctx context.Context, title string) (Table, error)
	Close() error
}

// Table is a single worksheet addressed with 1-based rows and columns.
// Reads outside the populated range yield empty strings.
type Table interface {
	Values(ctx context.Context) ([][]string, error)
	Row(ctx context.Context, row int) ([]string, error)
	Cell(ctx context.Context, row, col int) (string, error)
	UpdateCell(ctx context.Context, row, col int, value string) error
	// UpdateRow writes values into row starting at column col.
	UpdateRow(ctx context.Context, row, col int, values []string) error
	AppendRow(ctx context.Context, values []string) error
	ColCount(ctx context.Context) (int, error)
	AddCols(ctx context.Context, n int) error
}

// OpenOrAdd returns the named worksheet, creating it when the workbook lacks it.
func OpenOrAdd(ctx context.Context, wb Workbook, title string) (Table, error) {
	t, err := wb.Worksheet(ctx, title)
	if errors.Is(err, ErrNoWorksheet) {
		return wb.AddWorksheet(ctx, title)
	}
	return t, err
}

// ColumnName converts a 1-based column index to its letter form (1 -> A, 27 -> AA).
func ColumnName(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

// A1 formats a cell reference, quoting the tab title.
func A1(title string, row, col int) string {
	return fmt.Sprintf("'%s'!%s%d", strings.ReplaceAll(title, "'", "''"), ColumnName(col), row)
}

func checkAddress(row, col int) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("%w: row %d col %d", ErrInvalidRange, row, col)
	}
	return nil
}
