// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the expert survey API.

# Route Registration

NewRouter builds an http.ServeMux with every endpoint and wraps it in CORS:

	handler := router.NewRouter(deps, cfg)

# Endpoints

	GET  /                       - Service banner and endpoint list
	GET  /api/health             - Liveness

	POST /api/set_user           - Store {name, email} in the session
	GET  /api/get_user           - Current identity or null

	GET  /api/user_progress      - Completed, total, next_row (requires user)
	GET  /api/next_patient       - Next undone patient after ?after= (requires user)
	GET  /api/patients           - Summaries of every row
	GET  /api/patient            - One record, ?row=&include_my=

	POST /api/claim              - {row, prev_row?} (requires user)
	POST /api/release            - {row} (requires user)

	POST /api/submit_prediction  - {row, outcome, confidence, snot22} (requires user)
	POST /api/update_prediction  - Same body, edits an existing submission (requires user)

	GET  /api/csv                - Patients tab as expert_predictions.csv

Every route is wrapped in middleware.WithLogging.
*/
package router
