// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/expert-survey/claims"
	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/navigator"
	"github.com/danielhkuo/expert-survey/session"
	"github.com/danielhkuo/expert-survey/sheet"
	"github.com/danielhkuo/expert-survey/store"
	"github.com/danielhkuo/expert-survey/submissions"
	"github.com/danielhkuo/expert-survey/testutil"
)

type testEnv struct {
	wb       *sheet.MemoryWorkbook
	patients sheet.Table
	ledger   sheet.Table
	deps     Deps
}

// newTestEnv wires every service over a memory workbook with n patients
func newTestEnv(t *testing.T, n int, mode, policy string) *testEnv {
	t.Helper()
	ctx := context.Background()
	clock := func() time.Time { return testutil.FixedNow }

	wb := testutil.NewWorkbook(t, n)
	patients := testutil.PatientsTable(t, wb)
	s := store.New(patients)
	s.Now = clock
	if _, err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	tab, err := sheet.OpenOrAdd(ctx, wb, testutil.SubmissionsTab)
	if err != nil {
		t.Fatalf("Failed to open submissions tab: %v", err)
	}
	l := submissions.NewLedger(tab)
	l.Now = clock
	if _, err := l.Migrate(ctx); err != nil {
		t.Fatalf("Ledger migrate failed: %v", err)
	}

	p, err := submissions.NewPolicy(policy, s, l)
	if err != nil {
		t.Fatalf("NewPolicy failed: %v", err)
	}

	cfg := testutil.GetTestConfig()
	sessions := session.NewManager(session.NewMemoryStore(), session.Options{
		Secret:   cfg.SessionSecret,
		SameSite: cfg.CookieSameSite,
	})

	return &testEnv{
		wb:       wb,
		patients: patients,
		ledger:   tab,
		deps: Deps{
			Store:     s,
			Claims:    claims.NewManager(s, mode, cfg.ClaimTTL),
			Policy:    p,
			Navigator: navigator.New(s, p),
			Sessions:  sessions,
		},
	}
}

// login signs a reviewer in and returns the response carrying their cookie
func (e *testEnv) login(t *testing.T, name, email string) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest("POST", "/api/set_user", models.SetUserRequest{Name: name, Email: email}, nil)
	w := httptest.NewRecorder()
	NewUserHandler(e.deps).SetUser(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
	return w
}

// call runs handler with the session of as (nil for anonymous)
func call(handler http.HandlerFunc, req *http.Request, as *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	if as != nil {
		testutil.WithCookies(req, as)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	testutil.AssertStatus(t, w, status)
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.OK || resp.Error != message {
		t.Errorf("Expected error %q, got %+v", message, resp)
	}
}
