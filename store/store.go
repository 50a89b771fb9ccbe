// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/sheet"
)

// FirstDataRow is the first row below the header.
const FirstDataRow = 2

// TimeLayout is ISO-8601 at second precision with a numeric offset.
const TimeLayout = "2006-01-02T15:04:05-07:00"

var ErrNotFound = errors.New("row not found")

var truthy = map[string]bool{
	"1": true, "true": true, "yes": true, "y": true, "submitted": true, "done": true,
}

// IsTruthy reports whether a submission_status value marks a row as submitted.
func IsTruthy(v string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(v))]
}

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(TimeLayout)
}

// Field is one column write within a multi-cell update.
type Field struct {
	Name  string
	Value string
}

// Store addresses the patients tab by column name.
type Store struct {
	table sheet.Table
	Now   func() time.Time

	mu     sync.Mutex
	schema *Schema
}

func New(t sheet.Table) *Store {
	return &Store{table: t, Now: time.Now}
}

// Migrate makes sure the required columns exist and caches the schema.
func (s *Store) Migrate(ctx context.Context) (*Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, err := EnsureColumns(ctx, s.table, RequiredColumns)
	if err != nil {
		return nil, err
	}
	s.schema = schema
	return schema, nil
}

// Schema returns the cached schema, migrating on first use.
func (s *Store) Schema(ctx context.Context) (*Schema, error) {
	s.mu.Lock()
	schema := s.schema
	s.mu.Unlock()
	if schema != nil {
		return schema, nil
	}
	return s.Migrate(ctx)
}

// Timestamp returns the current time formatted for storage.
func (s *Store) Timestamp() string {
	return FormatTime(s.Now())
}

func (s *Store) column(ctx context.Context, name string) (int, error) {
	schema, err := s.Schema(ctx)
	if err != nil {
		return 0, err
	}
	c, ok := schema.Col(name)
	if !ok {
		return 0, fmt.Errorf("column %s missing from header", name)
	}
	return c, nil
}

// Value reads one named cell.
func (s *Store) Value(ctx context.Context, row int, name string) (string, error) {
	c, err := s.column(ctx, name)
	if err != nil {
		return "", err
	}
	return s.table.Cell(ctx, row, c)
}

// Set writes one named cell.
func (s *Store) Set(ctx context.Context, row int, name, value string) error {
	c, err := s.column(ctx, name)
	if err != nil {
		return err
	}
	if err := s.table.UpdateCell(ctx, row, c, value); err != nil {
		return fmt.Errorf("failed to set %s on row %d: %w", name, row, err)
	}
	return nil
}

// SetFields writes each field in order. The first failure stops the rest;
// fields already written stay written.
func (s *Store) SetFields(ctx context.Context, row int, fields ...Field) error {
	for _, f := range fields {
		if err := s.Set(ctx, row, f.Name, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// IsSubmitted reports whether the row's submission_status is truthy.
func (s *Store) IsSubmitted(ctx context.Context, row int) (bool, error) {
	v, err := s.Value(ctx, row, ColSubmissionStatus)
	if err != nil {
		return false, err
	}
	return IsTruthy(v), nil
}

// Exists reports whether row is a data row holding at least one value.
func (s *Store) Exists(ctx context.Context, row int) (bool, error) {
	if row < FirstDataRow {
		return false, nil
	}
	vals, err := s.table.Row(ctx, row)
	if err != nil {
		return false, err
	}
	for _, v := range vals {
		if v != "" {
			return true, nil
		}
	}
	return false, nil
}

// GetPatient returns the non-empty values of row plus the derived submitted flag.
func (s *Store) GetPatient(ctx context.Context, row int) (models.Patient, error) {
	if row < FirstDataRow {
		return models.Patient{}, ErrNotFound
	}
	schema, err := s.Schema(ctx)
	if err != nil {
		return models.Patient{}, err
	}
	vals, err := s.table.Row(ctx, row)
	if err != nil {
		return models.Patient{}, fmt.Errorf("failed to read row %d: %w", row, err)
	}

	record := make(map[string]any)
	for _, key := range schema.Header {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if v := schema.Get(vals, key); v != "" {
			record[key] = v
		}
	}
	if len(record) == 0 {
		return models.Patient{}, ErrNotFound
	}
	record["submitted"] = IsTruthy(schema.Get(vals, ColSubmissionStatus))

	return models.Patient{Row: row, Record: record}, nil
}

// ListPatients summarizes every data row from the point of view of viewer.
func (s *Store) ListPatients(ctx context.Context, viewer string) ([]models.PatientSummary, error) {
	schema, err := s.Schema(ctx)
	if err != nil {
		return nil, err
	}
	values, err := s.table.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read patients: %w", err)
	}

	viewerLower := strings.ToLower(strings.TrimSpace(viewer))
	out := []models.PatientSummary{}
	for r := FirstDataRow; r <= len(values); r++ {
		vals := values[r-1]
		submitted := IsTruthy(schema.Get(vals, ColSubmissionStatus))
		claimedBy := schema.Get(vals, ColClaimedBy)
		mine := claimedBy != "" && claimedBy == viewer
		reviewer := strings.ToLower(strings.TrimSpace(schema.Get(vals, ColReviewerEmail)))

		out = append(out, models.PatientSummary{
			Row:         r,
			Submitted:   submitted,
			Available:   !submitted && (claimedBy == "" || mine),
			LockedByYou: mine && !submitted,
			ClaimedBy:   claimedBy,
			ClaimedAt:   schema.Get(vals, ColClaimedAt),
			CanEdit:     submitted && viewerLower != "" && reviewer == viewerLower,
		})
	}
	return out, nil
}

// RowNumbers lists every data row in ascending order.
func (s *Store) RowNumbers(ctx context.Context) ([]int, error) {
	values, err := s.table.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read patients: %w", err)
	}
	rows := []int{}
	for r := FirstDataRow; r <= len(values); r++ {
		rows = append(rows, r)
	}
	return rows, nil
}

// CountPatients returns the number of data rows.
func (s *Store) CountPatients(ctx context.Context) (int, error) {
	rows, err := s.RowNumbers(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// WriteCSV serializes the whole tab, header included. Rows are padded to the
// widest row so every record has the same number of fields.
func (s *Store) WriteCSV(ctx context.Context, w io.Writer) error {
	values, err := s.table.Values(ctx)
	if err != nil {
		return fmt.Errorf("failed to read patients: %w", err)
	}

	width := 0
	for _, r := range values {
		width = max(width, len(r))
	}
	for i, r := range values {
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			values[i] = padded
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(values); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
