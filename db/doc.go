// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles the session database connection and schema.

Survey data itself lives in the spreadsheet; the database only backs
reviewer sessions so they survive restarts.

# Connecting

	conn, err := db.Open(db.TypeSQLite, "file:sessions.db")

The driver must be linked in by the caller (modernc.org/sqlite registers
"sqlite", github.com/lib/pq registers "postgres").

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for the table and index.

# Tables

  - survey_session: id, name, email, expires_at (unix seconds)
*/
package db
