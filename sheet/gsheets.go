// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sheet

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	valueInputRaw = "RAW"
	dimColumns    = "COLUMNS"
)

// Credentials selects how the Google service account is loaded.
// JSON wins over File when both are set.
type Credentials struct {
	JSON string
	File string
}

// GoogleWorkbook is a Google Sheets spreadsheet accessed through the v4 API.
type GoogleWorkbook struct {
	srv           *sheets.Service
	spreadsheetID string
}

// OpenGoogle authenticates with a service account and binds to one spreadsheet.
func OpenGoogle(ctx context.Context, spreadsheetID string, creds Credentials) (*GoogleWorkbook, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id required")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if strings.TrimSpace(creds.JSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds.JSON)))
	} else {
		opts = append(opts, option.WithCredentialsFile(creds.File))
	}

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &GoogleWorkbook{srv: srv, spreadsheetID: spreadsheetID}, nil
}

func (w *GoogleWorkbook) properties(ctx context.Context, title string) (*sheets.SheetProperties, error) {
	ss, err := w.srv.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return s.Properties, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoWorksheet, title)
}

func (w *GoogleWorkbook) Worksheet(ctx context.Context, title string) (Table, error) {
	props, err := w.properties(ctx, title)
	if err != nil {
		return nil, err
	}
	return &googleTable{wb: w, title: title, sheetID: props.SheetId}, nil
}

func (w *GoogleWorkbook) AddWorksheet(ctx context.Context, title string) (Table, error) {
	resp, err := w.srv.Spreadsheets.BatchUpdate(w.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet %s: %w", title, err)
	}
	var sheetID int64
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		sheetID = resp.Replies[0].AddSheet.Properties.SheetId
	}
	return &googleTable{wb: w, title: title, sheetID: sheetID}, nil
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (w *GoogleWorkbook) Close() error { return nil }

type googleTable struct {
	wb      *GoogleWorkbook
	title   string
	sheetID int64
}

func (t *googleTable) quotedTitle() string {
	return "'" + strings.ReplaceAll(t.title, "'", "''") + "'"
}

func (t *googleTable) get(ctx context.Context, rng string) ([][]string, error) {
	vr, err := t.wb.srv.Spreadsheets.Values.Get(t.wb.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rng, err)
	}
	out := make([][]string, len(vr.Values))
	for i, r := range vr.Values {
		out[i] = make([]string, len(r))
		for j, v := range r {
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out, nil
}

func (t *googleTable) Values(ctx context.Context) ([][]string, error) {
	return t.get(ctx, t.quotedTitle())
}

func (t *googleTable) Row(ctx context.Context, row int) ([]string, error) {
	if err := checkAddress(row, 1); err != nil {
		return nil, err
	}
	rows, err := t.get(ctx, fmt.Sprintf("%s!%d:%d", t.quotedTitle(), row, row))
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (t *googleTable) Cell(ctx context.Context, row, col int) (string, error) {
	if err := checkAddress(row, col); err != nil {
		return "", err
	}
	rows, err := t.get(ctx, A1(t.title, row, col))
	if err != nil || len(rows) == 0 || len(rows[0]) == 0 {
		return "", err
	}
	return rows[0][0], nil
}

func (t *googleTable) UpdateCell(ctx context.Context, row, col int, value string) error {
	return t.UpdateRow(ctx, row, col, []string{value})
}

func toRow(values []string) []interface{} {
	r := make([]interface{}, len(values))
	for i, v := range values {
		r[i] = v
	}
	return r
}

func (t *googleTable) UpdateRow(ctx context.Context, row, col int, values []string) error {
	if err := checkAddress(row, col); err != nil {
		return err
	}
	rng := A1(t.title, row, col)
	_, err := t.wb.srv.Spreadsheets.Values.Update(t.wb.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]interface{}{toRow(values)},
	}).ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", rng, err)
	}
	return nil
}

func (t *googleTable) AppendRow(ctx context.Context, values []string) error {
	_, err := t.wb.srv.Spreadsheets.Values.Append(t.wb.spreadsheetID, t.quotedTitle(), &sheets.ValueRange{
		Values: [][]interface{}{toRow(values)},
	}).ValueInputOption(valueInputRaw).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", t.title, err)
	}
	return nil
}

func (t *googleTable) ColCount(ctx context.Context) (int, error) {
	props, err := t.wb.properties(ctx, t.title)
	if err != nil {
		return 0, err
	}
	if props.GridProperties == nil {
		return 0, nil
	}
	return int(props.GridProperties.ColumnCount), nil
}

func (t *googleTable) AddCols(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	_, err := t.wb.srv.Spreadsheets.BatchUpdate(t.wb.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AppendDimension: &sheets.AppendDimensionRequest{
				SheetId:         t.sheetID,
				Dimension:       dimColumns,
				Length:          int64(n),
				ForceSendFields: []string{"SheetId"},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to add %d columns to %s: %w", n, t.title, err)
	}
	return nil
}
