// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/expert-survey/cliparse"
	"github.com/danielhkuo/expert-survey/handlers"
	"github.com/danielhkuo/expert-survey/middleware"
)

// NewRouter registers every endpoint and wraps the mux in CORS.
func NewRouter(deps handlers.Deps, cfg cliparse.Config) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps)
	patientHandler := handlers.NewPatientHandler(deps)
	claimHandler := handlers.NewClaimHandler(deps)
	submissionHandler := handlers.NewSubmissionHandler(deps)

	// Root and health
	mux.HandleFunc("GET /{$}", middleware.WithLogging(handlers.Landing))
	mux.HandleFunc("GET /api/health", middleware.WithLogging(handlers.Health))

	// Session identity
	mux.HandleFunc("POST /api/set_user", middleware.WithLogging(userHandler.SetUser))
	mux.HandleFunc("GET /api/get_user", middleware.WithLogging(userHandler.GetUser))

	// Progress and navigation (requires user)
	mux.HandleFunc("GET /api/user_progress", middleware.WithLogging(patientHandler.Progress))
	mux.HandleFunc("GET /api/next_patient", middleware.WithLogging(patientHandler.NextPatient))

	// Patients (public)
	mux.HandleFunc("GET /api/patients", middleware.WithLogging(patientHandler.ListPatients))
	mux.HandleFunc("GET /api/patient", middleware.WithLogging(patientHandler.GetPatient))

	// Claims (requires user)
	mux.HandleFunc("POST /api/claim", middleware.WithLogging(claimHandler.Claim))
	mux.HandleFunc("POST /api/release", middleware.WithLogging(claimHandler.Release))

	// Predictions (requires user)
	mux.HandleFunc("POST /api/submit_prediction", middleware.WithLogging(submissionHandler.Submit))
	mux.HandleFunc("POST /api/update_prediction", middleware.WithLogging(submissionHandler.Update))

	// Export (public)
	mux.HandleFunc("GET /api/csv", middleware.WithLogging(submissionHandler.CSV))

	return middleware.CORS(cfg.AllowedOrigins)(mux)
}
