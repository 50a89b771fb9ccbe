// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sheet abstracts the spreadsheet that holds survey data.

A Workbook is opened once at startup and handed to the stores that need it:

	wb, err := sheet.OpenGoogle(ctx, cfg.SheetID, sheet.Credentials{File: "service_account.json"})
	defer wb.Close()
	patients, err := wb.Worksheet(ctx, "Sheet1")

# Backends

  - GoogleWorkbook: Google Sheets v4 API with a service account
  - XLSXWorkbook: a local .xlsx file, saved after each write
  - MemoryWorkbook: in-process grid, used by tests and local runs

# Addressing

Rows and columns are 1-based like spreadsheet cells. Row 1 is normally the
header. Reads beyond the populated area return empty strings. Each write is
its own call; nothing is batched and nothing is transactional.
*/
package sheet
