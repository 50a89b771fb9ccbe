// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheet

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestColumnName(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{1, "A"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{703, "AAA"},
	}

	for _, tt := range tests {
		if got := ColumnName(tt.col); got != tt.want {
			t.Errorf("ColumnName(%d) = %q, want %q", tt.col, got, tt.want)
		}
	}
}

func TestA1(t *testing.T) {
	if got := A1("Sheet1", 2, 3); got != "'Sheet1'!C2" {
		t.Errorf("Expected 'Sheet1'!C2, got %s", got)
	}
	if got := A1("Bob's tab", 1, 1); got != "'Bob''s tab'!A1" {
		t.Errorf("Expected escaped quote, got %s", got)
	}
}

// exerciseTable runs the same behavior checks against any backend
func exerciseTable(t *testing.T, tbl Table) {
	t.Helper()
	ctx := context.Background()

	if err := tbl.UpdateRow(ctx, 1, 1, []string{"id", "name"}); err != nil {
		t.Fatalf("UpdateRow failed: %v", err)
	}
	if err := tbl.AppendRow(ctx, []string{"1", "alice"}); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}
	if err := tbl.UpdateCell(ctx, 2, 4, "x"); err != nil {
		t.Fatalf("UpdateCell failed: %v", err)
	}

	v, err := tbl.Cell(ctx, 2, 2)
	if err != nil {
		t.Fatalf("Cell failed: %v", err)
	}
	if v != "alice" {
		t.Errorf("Expected alice, got %q", v)
	}

	v, _ = tbl.Cell(ctx, 2, 3)
	if v != "" {
		t.Errorf("Expected gap cell to be empty, got %q", v)
	}
	v, _ = tbl.Cell(ctx, 99, 99)
	if v != "" {
		t.Errorf("Expected out of range cell to be empty, got %q", v)
	}

	row, err := tbl.Row(ctx, 2)
	if err != nil {
		t.Fatalf("Row failed: %v", err)
	}
	if len(row) != 4 || row[3] != "x" {
		t.Errorf("Expected row [1 alice  x], got %v", row)
	}

	all, err := tbl.Values(ctx)
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(all))
	}

	if _, err := tbl.Cell(ctx, 0, 1); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange for row 0, got %v", err)
	}
}

func TestMemoryTable(t *testing.T) {
	wb := NewMemoryWorkbook()
	tbl, err := wb.AddWorksheet(context.Background(), "Sheet1")
	if err != nil {
		t.Fatalf("AddWorksheet failed: %v", err)
	}
	exerciseTable(t, tbl)
}

func TestMemoryWorkbook_MissingWorksheet(t *testing.T) {
	wb := NewMemoryWorkbook()
	_, err := wb.Worksheet(context.Background(), "nope")
	if !errors.Is(err, ErrNoWorksheet) {
		t.Errorf("Expected ErrNoWorksheet, got %v", err)
	}

	tbl, err := OpenOrAdd(context.Background(), wb, "nope")
	if err != nil {
		t.Fatalf("OpenOrAdd failed: %v", err)
	}
	if tbl == nil {
		t.Fatal("Expected a table")
	}
	if _, err := wb.Worksheet(context.Background(), "nope"); err != nil {
		t.Errorf("Expected worksheet to exist after OpenOrAdd, got %v", err)
	}
}

func TestMemoryWorkbook_SeedCSV(t *testing.T) {
	wb := NewMemoryWorkbook()
	err := wb.SeedCSV("Sheet1", strings.NewReader("id,age\n1,40\n2\n"))
	if err != nil {
		t.Fatalf("SeedCSV failed: %v", err)
	}

	tbl, _ := wb.Worksheet(context.Background(), "Sheet1")
	all, _ := tbl.Values(context.Background())
	if len(all) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(all))
	}
	if n, _ := tbl.ColCount(context.Background()); n != 2 {
		t.Errorf("Expected 2 columns, got %d", n)
	}
}

func TestXLSXWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.xlsx")

	wb, err := OpenXLSX(path)
	if err != nil {
		t.Fatalf("OpenXLSX failed: %v", err)
	}
	tbl, err := wb.AddWorksheet(context.Background(), "Sheet1")
	if err != nil {
		t.Fatalf("AddWorksheet failed: %v", err)
	}
	exerciseTable(t, tbl)
	if err := wb.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Reopen and verify the writes were persisted
	wb, err = OpenXLSX(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	tbl, err = wb.Worksheet(context.Background(), "Sheet1")
	if err != nil {
		t.Fatalf("Worksheet failed: %v", err)
	}
	v, _ := tbl.Cell(context.Background(), 2, 2)
	if v != "alice" {
		t.Errorf("Expected persisted value alice, got %q", v)
	}
}
