// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first; variables already set
in the environment are not overwritten.

# Precedence

CLI flags, then environment variables, then the YAML file named by -c or
CONFIG_FILE, then defaults.

# Environment Variables

	PORT                      -p                 (5001)
	SHEET_BACKEND             -backend           (sheets | xlsx | memory)
	SHEET_ID                  -sheet-id
	SHEET_TAB                 -sheet-tab         (Sheet1)
	SUBMISSIONS_TAB           -submissions-tab   (submissions)
	XLSX_PATH                 -xlsx
	MEMORY_SEED_CSV           -seed-csv
	GCP_SERVICE_ACCOUNT_JSON
	GCP_SERVICE_ACCOUNT_FILE  -credentials       (service_account.json)
	CLAIM_MODE                -claim-mode        (open | lock)
	SUBMISSION_POLICY         -policy            (ledger | row)
	CLAIM_TTL_MINUTES         -claim-ttl         (30)
	CLAIM_SWEEP_INTERVAL      -sweep-interval    (0, disabled)
	SESSION_SECRET            -session-secret
	SESSION_DATABASE_URL      -d
	DATABASE_TYPE             -t                 (sqlite | postgres | memory)
	ALLOWED_ORIGINS           -origins           (falls back to ALLOW_ORIGIN)
	COOKIE_SAMESITE           -samesite          (Lax)
	COOKIE_SECURE             -secure-cookie     (false)

# Validation

ParseFlags returns an error if:

  - SESSION_SECRET is missing
  - the sheets backend has no SHEET_ID, or the xlsx backend no XLSX_PATH
  - a mode, policy, database type or SameSite value is unknown
  - sqlite or postgres sessions have no database URL

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
*/
package cliparse
