// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/testutil"
)

// submitAs records a prediction through the policy, bypassing HTTP
func (e *testEnv) submitAs(t *testing.T, who models.Identity, rows ...int) {
	t.Helper()
	for _, row := range rows {
		err := e.deps.Policy.Submit(context.Background(), who, row, models.Prediction{Outcome: "improved", Confidence: "4", SNOT22: "20"})
		if err != nil {
			t.Fatalf("Submit row %d failed: %v", row, err)
		}
	}
}

var ann = models.Identity{Name: "Ann", Email: "ann@x.com"}

func TestProgress(t *testing.T) {
	env := newTestEnv(t, 5, models.ClaimModeOpen, models.PolicyLedger)
	h := NewPatientHandler(env.deps)

	t.Run("requires user", func(t *testing.T) {
		w := call(h.Progress, testutil.MakeRequest("GET", "/api/user_progress", nil, nil), nil)
		assertError(t, w, http.StatusUnauthorized, "no user")
	})

	t.Run("counts own submissions", func(t *testing.T) {
		cookie := env.login(t, ann.Name, ann.Email)
		env.submitAs(t, ann, 2, 3)

		w := call(h.Progress, testutil.MakeRequest("GET", "/api/user_progress", nil, nil), cookie)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ProgressResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.OK || resp.Completed != 2 || resp.Total != 5 {
			t.Errorf("Unexpected progress %+v", resp)
		}
		if resp.NextRow == nil || *resp.NextRow != 4 {
			t.Errorf("Expected next_row 4, got %v", resp.NextRow)
		}
	})
}

func TestNextPatient(t *testing.T) {
	env := newTestEnv(t, 5, models.ClaimModeOpen, models.PolicyLedger)
	h := NewPatientHandler(env.deps)
	cookie := env.login(t, ann.Name, ann.Email)
	env.submitAs(t, ann, 2, 3)

	tests := []struct {
		name      string
		query     string
		wantRow   int
		wantPatID string
	}{
		{"no after", "", 4, "P003"},
		{"after middle row", "?after=5", 6, "P005"},
		{"after last row wraps", "?after=6", 4, "P003"},
		{"after unknown row", "?after=42", 4, "P003"},
		{"malformed after", "?after=abc", 4, "P003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(h.NextPatient, testutil.MakeRequest("GET", "/api/next_patient"+tt.query, nil, nil), cookie)
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.NextPatientResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Row != tt.wantRow {
				t.Errorf("Expected row %d, got %d", tt.wantRow, resp.Row)
			}
			if resp.Record["patient_id"] != tt.wantPatID {
				t.Errorf("Expected patient %s, got %v", tt.wantPatID, resp.Record["patient_id"])
			}
			if resp.MySubmission != nil {
				t.Errorf("Expected no submission on an undone row, got %+v", resp.MySubmission)
			}
		})
	}

	t.Run("complete when everything is done", func(t *testing.T) {
		env.submitAs(t, ann, 4, 5, 6)
		w := call(h.NextPatient, testutil.MakeRequest("GET", "/api/next_patient", nil, nil), cookie)

		var resp models.CompleteResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.OK || !resp.Complete {
			t.Errorf("Expected complete, got %+v", resp)
		}
	})

	t.Run("requires user", func(t *testing.T) {
		w := call(h.NextPatient, testutil.MakeRequest("GET", "/api/next_patient", nil, nil), nil)
		assertError(t, w, http.StatusUnauthorized, "no user")
	})
}

func TestListPatients(t *testing.T) {
	env := newTestEnv(t, 3, models.ClaimModeLock, models.PolicyLedger)
	h := NewPatientHandler(env.deps)
	ctx := context.Background()

	if err := env.deps.Claims.Claim(ctx, 3, "bob@x.com", 0); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	env.submitAs(t, ann, 2)

	t.Run("anonymous", func(t *testing.T) {
		w := call(h.ListPatients, testutil.MakeRequest("GET", "/api/patients", nil, nil), nil)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.PatientsResponse
		testutil.AssertJSON(t, w, &resp)
		if len(resp.Patients) != 3 {
			t.Fatalf("Expected 3 patients, got %d", len(resp.Patients))
		}
		for _, p := range resp.Patients {
			if p.MySubmitted || p.LockedByYou {
				t.Errorf("Anonymous viewer should own nothing, got %+v", p)
			}
		}
	})

	t.Run("signed in", func(t *testing.T) {
		cookie := env.login(t, ann.Name, ann.Email)
		w := call(h.ListPatients, testutil.MakeRequest("GET", "/api/patients", nil, nil), cookie)

		var resp models.PatientsResponse
		testutil.AssertJSON(t, w, &resp)

		byRow := map[int]models.PatientSummary{}
		for _, p := range resp.Patients {
			byRow[p.Row] = p
		}
		if !byRow[2].MySubmitted {
			t.Error("Expected row 2 to be marked my_submitted")
		}
		claimed := byRow[3]
		if claimed.Available || claimed.ClaimedBy != "bob@x.com" || claimed.ClaimedAgo == "" || claimed.Stale {
			t.Errorf("Unexpected claimed row summary %+v", claimed)
		}
		if !byRow[4].Available {
			t.Error("Expected row 4 to be available")
		}
	})
}

func TestGetPatient(t *testing.T) {
	env := newTestEnv(t, 3, models.ClaimModeOpen, models.PolicyLedger)
	h := NewPatientHandler(env.deps)

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			query      string
			wantStatus int
			wantError  string
		}{
			{"?row=abc", http.StatusBadRequest, "bad row"},
			{"", http.StatusNotFound, "not found"},
			{"?row=1", http.StatusNotFound, "not found"},
			{"?row=99", http.StatusNotFound, "not found"},
		}
		for _, tt := range tests {
			w := call(h.GetPatient, testutil.MakeRequest("GET", "/api/patient"+tt.query, nil, nil), nil)
			assertError(t, w, tt.wantStatus, tt.wantError)
		}
	})

	t.Run("record with row", func(t *testing.T) {
		w := call(h.GetPatient, testutil.MakeRequest("GET", "/api/patient?row=2", nil, nil), nil)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.Patient
		testutil.AssertJSON(t, w, &resp)
		if resp.Row != 2 {
			t.Errorf("Expected row 2, got %d", resp.Row)
		}
		if resp.Record["patient_id"] != "P001" || resp.Record["submitted"] != false {
			t.Errorf("Unexpected record %v", resp.Record)
		}
		if _, ok := resp.Record["row"]; ok {
			t.Error("Row belongs beside the record, not inside it")
		}
	})

	t.Run("include my submission", func(t *testing.T) {
		cookie := env.login(t, ann.Name, ann.Email)
		env.submitAs(t, ann, 2)

		w := call(h.GetPatient, testutil.MakeRequest("GET", "/api/patient?row=2&include_my=1", nil, nil), cookie)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.PatientWithSubmission
		testutil.AssertJSON(t, w, &resp)
		if resp.Row != 2 || resp.Record["patient_id"] != "P001" {
			t.Errorf("Unexpected response %+v", resp)
		}
		if resp.MySubmission == nil || resp.MySubmission.Outcome != "improved" {
			t.Errorf("Expected own submission, got %+v", resp.MySubmission)
		}

		// Anonymous callers get the wrapper without a submission
		w = call(h.GetPatient, testutil.MakeRequest("GET", "/api/patient?row=2&include_my=true", nil, nil), nil)
		var anon models.PatientWithSubmission
		testutil.AssertJSON(t, w, &anon)
		if anon.Row != 2 || anon.MySubmission != nil {
			t.Errorf("Unexpected anonymous response %+v", anon)
		}
	})
}
