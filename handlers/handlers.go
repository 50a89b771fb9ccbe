// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/expert-survey/claims"
	"github.com/danielhkuo/expert-survey/middleware"
	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/navigator"
	"github.com/danielhkuo/expert-survey/session"
	"github.com/danielhkuo/expert-survey/store"
	"github.com/danielhkuo/expert-survey/submissions"
)

// Deps are the services shared by every handler.
type Deps struct {
	Store     *store.Store
	Claims    *claims.Manager
	Policy    submissions.Policy
	Navigator *navigator.Navigator
	Sessions  *session.Manager
}

// Endpoints is the list advertised on the landing response
var Endpoints = []string{
	"/api/health",
	"/api/get_user",
	"/api/user_progress",
	"/api/next_patient",
	"/api/patients",
	"/api/patient",
	"/api/claim",
	"/api/release",
	"/api/submit_prediction",
	"/api/update_prediction",
	"/api/csv",
}

// Landing handles GET /
func Landing(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.LandingResponse{
		OK:        true,
		Service:   "expert-survey-backend",
		Message:   "Backend is live. Use the /api/* endpoints.",
		Endpoints: Endpoints,
	})
}

// Health handles GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// requireUser loads the session identity or answers 401.
func requireUser(w http.ResponseWriter, r *http.Request, sessions *session.Manager) (models.Identity, bool) {
	who, ok := sessions.Load(r)
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "no user")
		return models.Identity{}, false
	}
	return who, true
}

// parseRow reads a row number from a request value. Empty means 0.
func parseRow(v models.Value) (int, bool) {
	row, err := v.Int()
	if err != nil {
		return 0, false
	}
	return row, true
}

// writeError maps domain errors onto status codes. Anything unrecognized is
// a backend failure.
func writeError(w http.ResponseWriter, err error, attrs ...any) {
	switch {
	case errors.Is(err, claims.ErrBadRow):
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad row")
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
	case errors.Is(err, claims.ErrAlreadyCompleted),
		errors.Is(err, claims.ErrLockedByOther),
		errors.Is(err, submissions.ErrNotSubmitted),
		errors.Is(err, submissions.ErrEmailMismatch):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("store request failed", append(attrs, "error", err)...)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "store error")
	}
}
