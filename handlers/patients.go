// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/expert-survey/claims"
	"github.com/danielhkuo/expert-survey/middleware"
	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/navigator"
	"github.com/danielhkuo/expert-survey/session"
	"github.com/danielhkuo/expert-survey/store"
	"github.com/danielhkuo/expert-survey/submissions"
)

type PatientHandler struct {
	store     *store.Store
	claims    *claims.Manager
	policy    submissions.Policy
	navigator *navigator.Navigator
	sessions  *session.Manager
}

func NewPatientHandler(deps Deps) *PatientHandler {
	return &PatientHandler{
		store:     deps.Store,
		claims:    deps.Claims,
		policy:    deps.Policy,
		navigator: deps.Navigator,
		sessions:  deps.Sessions,
	}
}

// Progress handles GET /api/user_progress
func (h *PatientHandler) Progress(w http.ResponseWriter, r *http.Request) {
	who, ok := requireUser(w, r, h.sessions)
	if !ok {
		return
	}

	resp, err := h.navigator.Progress(r.Context(), who.Email)
	if err != nil {
		writeError(w, err, "email", who.Email)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// NextPatient handles GET /api/next_patient?after=
func (h *PatientHandler) NextPatient(w http.ResponseWriter, r *http.Request) {
	who, ok := requireUser(w, r, h.sessions)
	if !ok {
		return
	}

	// A missing or malformed after starts from the top
	after, err := strconv.Atoi(r.URL.Query().Get("after"))
	if err != nil {
		after = 0
	}

	ctx := r.Context()
	row, found, err := h.navigator.Next(ctx, who.Email, after)
	if err != nil {
		writeError(w, err, "email", who.Email)
		return
	}
	if !found {
		middleware.JSONResponse(w, http.StatusOK, models.CompleteResponse{OK: true, Complete: true})
		return
	}

	patient, err := h.store.GetPatient(ctx, row)
	if err != nil {
		writeError(w, err, "row", row)
		return
	}
	mine, err := h.policy.Lookup(ctx, who.Email, row)
	if err != nil {
		writeError(w, err, "row", row, "email", who.Email)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.NextPatientResponse{
		OK:           true,
		Row:          row,
		Record:       patient.Record,
		MySubmission: mine,
	})
}

// ListPatients handles GET /api/patients. Works without a session.
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	who, _ := h.sessions.Load(r)

	list, err := h.store.ListPatients(ctx, who.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	h.claims.Annotate(list)

	if who.Email != "" {
		mine, err := h.policy.UserRows(ctx, who.Email)
		if err != nil {
			writeError(w, err, "email", who.Email)
			return
		}
		for i := range list {
			list[i].MySubmitted = mine[list[i].Row]
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.PatientsResponse{Patients: list})
}

// GetPatient handles GET /api/patient?row=&include_my=
// Without include_my the response is {row, record}.
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rowStr := strings.TrimSpace(q.Get("row"))
	if rowStr == "" {
		rowStr = "0"
	}
	row, err := strconv.Atoi(rowStr)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad row")
		return
	}

	ctx := r.Context()
	patient, err := h.store.GetPatient(ctx, row)
	if err != nil {
		writeError(w, err, "row", row)
		return
	}

	switch q.Get("include_my") {
	case "1", "true", "True":
	default:
		middleware.JSONResponse(w, http.StatusOK, patient)
		return
	}

	resp := models.PatientWithSubmission{Row: row, Record: patient.Record}
	if who, ok := h.sessions.Load(r); ok {
		resp.MySubmission, err = h.policy.Lookup(ctx, who.Email, row)
		if err != nil {
			writeError(w, err, "row", row, "email", who.Email)
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
