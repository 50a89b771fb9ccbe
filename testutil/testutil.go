// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/expert-survey/cliparse"
	"github.com/danielhkuo/expert-survey/sheet"
)

const (
	PatientsTab    = "Sheet1"
	SubmissionsTab = "submissions"
)

// PatientHeader is the pre-existing header of test sheets, before migration
var PatientHeader = []string{"patient_id", "age", "symptoms"}

// FixedNow is the clock used by tests that check timestamps
var FixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

// NewWorkbook creates a memory workbook whose patients tab has a header and
// n patients on rows 2..n+1
func NewWorkbook(t *testing.T, n int) *sheet.MemoryWorkbook {
	t.Helper()

	rows := [][]string{append([]string(nil), PatientHeader...)}
	for i := 1; i <= n; i++ {
		rows = append(rows, []string{fmt.Sprintf("P%03d", i), fmt.Sprint(30 + i), "congestion"})
	}

	wb := sheet.NewMemoryWorkbook()
	wb.Set(PatientsTab, rows)
	return wb
}

// PatientsTable returns the patients tab of wb
func PatientsTable(t *testing.T, wb sheet.Workbook) sheet.Table {
	t.Helper()

	tbl, err := wb.Worksheet(context.Background(), PatientsTab)
	if err != nil {
		t.Fatalf("Failed to open patients tab: %v", err)
	}
	return tbl
}

// CellByName reads a cell by header name, failing the test when the header lacks it
func CellByName(t *testing.T, tbl sheet.Table, row int, name string) string {
	t.Helper()

	header, err := tbl.Row(context.Background(), 1)
	if err != nil {
		t.Fatalf("Failed to read header: %v", err)
	}
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			v, err := tbl.Cell(context.Background(), row, i+1)
			if err != nil {
				t.Fatalf("Failed to read cell: %v", err)
			}
			return v
		}
	}
	t.Fatalf("Column %s missing from header %v", name, header)
	return ""
}

// SetCellByName writes a cell by header name
func SetCellByName(t *testing.T, tbl sheet.Table, row int, name, value string) {
	t.Helper()

	header, err := tbl.Row(context.Background(), 1)
	if err != nil {
		t.Fatalf("Failed to read header: %v", err)
	}
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			if err := tbl.UpdateCell(context.Background(), row, i+1, value); err != nil {
				t.Fatalf("Failed to write cell: %v", err)
			}
			return
		}
	}
	t.Fatalf("Column %s missing from header %v", name, header)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           5001,
		Backend:        cliparse.BackendMemory,
		SheetTab:       PatientsTab,
		SubmissionsTab: SubmissionsTab,
		ClaimMode:      "lock",
		Policy:         "ledger",
		ClaimTTL:       30 * time.Minute,
		SessionSecret:  "test-session-secret",
		DatabaseType:   cliparse.DatabaseMemory,
		AllowedOrigins: []string{"http://localhost:5173"},
		CookieSameSite: http.SameSiteLaxMode,
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// WithCookies copies the cookies set on a previous response onto req
func WithCookies(req *http.Request, w *httptest.ResponseRecorder) *http.Request {
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
