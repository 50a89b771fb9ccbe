// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/expert-survey/middleware"
	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/session"
	"github.com/danielhkuo/expert-survey/store"
	"github.com/danielhkuo/expert-survey/submissions"
)

// CSVFilename is the download name of the export
const CSVFilename = "expert_predictions.csv"

type SubmissionHandler struct {
	store    *store.Store
	policy   submissions.Policy
	sessions *session.Manager
}

func NewSubmissionHandler(deps Deps) *SubmissionHandler {
	return &SubmissionHandler{store: deps.Store, policy: deps.Policy, sessions: deps.Sessions}
}

// readPrediction decodes a prediction body, answering 400 on a bad row.
func readPrediction(w http.ResponseWriter, r *http.Request) (int, models.Prediction, bool) {
	var req models.PredictionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad row")
		return 0, models.Prediction{}, false
	}
	row, ok := parseRow(req.Row)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad row")
		return 0, models.Prediction{}, false
	}
	return row, models.Prediction{
		Outcome:    req.Outcome.String(),
		Confidence: req.Confidence.String(),
		SNOT22:     req.SNOT22.String(),
	}, true
}

// Submit handles POST /api/submit_prediction
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	who, ok := requireUser(w, r, h.sessions)
	if !ok {
		return
	}
	row, pred, ok := readPrediction(w, r)
	if !ok {
		return
	}

	if err := h.policy.Submit(r.Context(), who, row, pred); err != nil {
		writeError(w, err, "row", row, "email", who.Email)
		return
	}

	slog.Info("prediction submitted", "row", row, "email", who.Email, "policy", h.policy.Name())

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// Update handles POST /api/update_prediction
func (h *SubmissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	who, ok := requireUser(w, r, h.sessions)
	if !ok {
		return
	}
	row, pred, ok := readPrediction(w, r)
	if !ok {
		return
	}

	if err := h.policy.Update(r.Context(), who, row, pred); err != nil {
		writeError(w, err, "row", row, "email", who.Email)
		return
	}

	slog.Info("prediction updated", "row", row, "email", who.Email, "policy", h.policy.Name())

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// CSV handles GET /api/csv
func (h *SubmissionHandler) CSV(w http.ResponseWriter, r *http.Request) {
	// Buffered so a read failure can still become a JSON error
	var buf bytes.Buffer
	if err := h.store.WriteCSV(r.Context(), &buf); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+CSVFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write csv", "error", err)
	}
}
