// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the expert survey API server.

Clinical experts review patient records kept in a spreadsheet and record an
outcome prediction, a confidence and a predicted SNOT-22 score for each.

# Starting the Server

	SESSION_SECRET=... SHEET_ID=... go run .

Or against a local workbook:

	go run . -backend xlsx -xlsx survey.xlsx -session-secret dev

# Configuration

Required settings:

  - SESSION_SECRET (-session-secret): cookie signing secret
  - SHEET_ID (-sheet-id) for the sheets backend, XLSX_PATH (-xlsx) for xlsx

Optional settings:

  - PORT (-p): Server port (default: 5001)
  - CLAIM_MODE, SUBMISSION_POLICY: open/lock claims, ledger/row predictions
  - SESSION_DATABASE_URL, DATABASE_TYPE: persist sessions in sqlite or postgres

See package cliparse for the full list.

# Architecture

  - sheet: worksheet access (Google Sheets, xlsx, memory)
  - store: patients tab by column name
  - claims: advisory row claims and the stale sweeper
  - submissions: ledger tab and submission policies
  - navigator: next-row rotation and progress
  - session, auth, db: signed cookie sessions
  - handlers, router, middleware: HTTP facade
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
