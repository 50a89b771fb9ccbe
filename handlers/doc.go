// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the expert survey API.

# Handler Types

Each handler is a struct built from the shared Deps:

  - UserHandler: session identity (set_user, get_user)
  - PatientHandler: progress, navigation, listing and detail
  - ClaimHandler: advisory row claims
  - SubmissionHandler: predictions and the CSV export

Handlers share one Deps value:

	deps := handlers.Deps{Store: s, Claims: c, Policy: p, Navigator: nav, Sessions: sm}
	patientHandler := handlers.NewPatientHandler(deps)

# Identity

set_user stores {name, email} in the session; there is no login. Progress,
navigation, claims and submissions answer 401 {"ok":false,"error":"no user"}
without one. The patient list, patient detail and CSV are public.

# Errors

Domain errors map onto status codes:

	bad row                     400
	already completed           400
	locked by another reviewer  400
	not submitted               400
	email mismatch              400
	not found                   404
	anything else               500 "store error" (logged)

Release never fails on a backend error; it logs and reports ok.
*/
package handlers
