// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/expert-survey/claims"
	"github.com/danielhkuo/expert-survey/middleware"
	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/session"
)

type ClaimHandler struct {
	claims   *claims.Manager
	sessions *session.Manager
}

func NewClaimHandler(deps Deps) *ClaimHandler {
	return &ClaimHandler{claims: deps.Claims, sessions: deps.Sessions}
}

// Claim handles POST /api/claim
func (h *ClaimHandler) Claim(w http.ResponseWriter, r *http.Request) {
	who, ok := requireUser(w, r, h.sessions)
	if !ok {
		return
	}

	var req models.ClaimRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad row")
		return
	}
	row, ok := parseRow(req.Row)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad row")
		return
	}
	// An unusable prev_row is simply not released
	prev, _ := parseRow(req.PrevRow)

	if err := h.claims.Claim(r.Context(), row, who.Email, prev); err != nil {
		writeError(w, err, "row", row, "email", who.Email)
		return
	}

	if h.claims.Locking() {
		slog.Info("row claimed", "row", row, "email", who.Email)
	}

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}

// Release handles POST /api/release. Always reports ok so navigation never
// blocks on a failed release.
func (h *ClaimHandler) Release(w http.ResponseWriter, r *http.Request) {
	who, ok := requireUser(w, r, h.sessions)
	if !ok {
		return
	}

	var req models.ReleaseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad row")
		return
	}
	row, ok := parseRow(req.Row)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "bad row")
		return
	}

	res, err := h.claims.Release(r.Context(), row, who.Email)
	if res == claims.StoreError {
		slog.Warn("release failed", "row", row, "email", who.Email, "error", err)
	}

	middleware.JSONResponse(w, http.StatusOK, models.OKResponse{OK: true})
}
