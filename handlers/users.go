// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/expert-survey/middleware"
	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/session"
)

type UserHandler struct {
	sessions *session.Manager
}

func NewUserHandler(deps Deps) *UserHandler {
	return &UserHandler{sessions: deps.Sessions}
}

// SetUser handles POST /api/set_user
func (h *UserHandler) SetUser(w http.ResponseWriter, r *http.Request) {
	var req models.SetUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name and email required")
		return
	}

	who := models.Identity{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	}
	if who.Name == "" || who.Email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name and email required")
		return
	}

	if err := h.sessions.Save(w, r, who); err != nil {
		slog.Error("failed to save session", "email", who.Email, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "session error")
		return
	}

	slog.Info("reviewer signed in", "email", who.Email)

	middleware.JSONResponse(w, http.StatusOK, models.UserResponse{OK: true, User: &who})
}

// GetUser handles GET /api/get_user
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	resp := models.UserResponse{OK: true}
	if who, ok := h.sessions.Load(r); ok {
		resp.User = &who
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
