// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package submissions records reviewer predictions.

Two policies are available and one is chosen at startup:

  - ledger: a separate tab with one entry per (reviewer email, patient row).
    Submitting twice updates the entry in place. Reviewers never block each
    other.
  - row: the prediction is written onto the patient row. Only the claim
    holder (or anyone, when unclaimed) may submit. A later submit overwrites
    the prediction and reviewer. Only the recorded reviewer may edit through
    Update, which bumps edit_count.

Emails compare case-insensitively; patient rows compare as strings.
*/
package submissions
