// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store reads and writes the patients tab by column name.

The header row is the schema. On first use (or an explicit Migrate at
startup) the required reviewer columns are appended to the header when
missing, and the resolved name-to-column map is cached for the life of the
Store:

	s := store.New(patientsTable)
	if _, err := s.Migrate(ctx); err != nil {
		return err
	}

# Rows

Row 1 is the header; patients start at FirstDataRow (2). A row past the end
of the tab, or one whose cells are all empty, is ErrNotFound.

# Writes

Each column write is a separate call to the backing sheet. SetFields stops
at the first failure and does not undo earlier writes.
*/
package store
