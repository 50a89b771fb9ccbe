// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SetUserRequest: name, email
  - ClaimRequest: row, prev_row
  - ReleaseRequest: row
  - PredictionRequest: row, outcome, confidence, snot22

Row and prediction fields use Value, which accepts JSON strings, numbers,
booleans and null and keeps their string form. Spreadsheet cells are
strings, so nothing is lost.

# Response Types

  - OKResponse, ErrorResponse: {ok} and {ok:false, error}
  - UserResponse: session identity
  - ProgressResponse: completed, total, next_row
  - NextPatientResponse / CompleteResponse: navigation
  - PatientsResponse, PatientWithSubmission: patient listing and detail

# Domain Types

  - Identity: reviewer name and email from the session
  - Patient: row number and its non-empty column values
  - PatientSummary: per-viewer status of one row
  - Prediction: outcome, confidence, snot22

# Constants

Claim modes:

	ClaimModeLock = "lock"
	ClaimModeOpen = "open"

Submission policies:

	PolicyLedger = "ledger"
	PolicyRow    = "row"
*/
package models
