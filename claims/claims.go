// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package claims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/store"
)

var (
	ErrBadRow           = errors.New("bad row")
	ErrAlreadyCompleted = errors.New("already completed")
	ErrLockedByOther    = errors.New("locked by another reviewer")
)

// DefaultTTL is how old a claim gets before it counts as stale
const DefaultTTL = 30 * time.Minute

// ReleaseResult tells the caller what a release did.
type ReleaseResult int

const (
	Released ReleaseResult = iota
	NotHeld
	StoreError
)

func (r ReleaseResult) String() string {
	switch r {
	case Released:
		return "released"
	case NotHeld:
		return "not held"
	case StoreError:
		return "store error"
	}
	return fmt.Sprintf("ReleaseResult(%d)", int(r))
}

// Manager grants advisory claims on patient rows.
//
// Checking the current holder and writing the new one are separate calls, so
// two reviewers claiming the same free row at the same moment can both
// succeed. The last write wins the cell.
type Manager struct {
	store *store.Store
	mode  string
	ttl   time.Duration
}

// NewManager builds a manager. Mode is models.ClaimModeLock or
// models.ClaimModeOpen; anything else is treated as open.
func NewManager(s *store.Store, mode string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: s, mode: mode, ttl: ttl}
}

// Locking reports whether claims are enforced.
func (m *Manager) Locking() bool {
	return m.mode == models.ClaimModeLock
}

// Claim gives row to email. When prevRow is a different row, the caller's
// claim on it is released first and any failure doing so is ignored.
// Claiming a row already held by email refreshes claimed_at.
func (m *Manager) Claim(ctx context.Context, row int, email string, prevRow int) error {
	if row < store.FirstDataRow {
		return ErrBadRow
	}
	if !m.Locking() {
		return nil
	}

	if prevRow != 0 && prevRow != row {
		if res, err := m.Release(ctx, prevRow, email); res == StoreError {
			slog.Warn("failed to release previous claim", "row", prevRow, "email", email, "error", err)
		}
	}

	exists, err := m.store.Exists(ctx, row)
	if err != nil {
		return fmt.Errorf("failed to read row %d: %w", row, err)
	}
	if !exists {
		return store.ErrNotFound
	}

	submitted, err := m.store.IsSubmitted(ctx, row)
	if err != nil {
		return err
	}
	if submitted {
		return ErrAlreadyCompleted
	}

	holder, err := m.store.Value(ctx, row, store.ColClaimedBy)
	if err != nil {
		return err
	}
	if holder != "" && holder != email {
		return ErrLockedByOther
	}

	return m.store.SetFields(ctx, row,
		store.Field{Name: store.ColClaimedBy, Value: email},
		store.Field{Name: store.ColClaimedAt, Value: m.store.Timestamp()},
	)
}

// Release clears the claim on row when it is unsubmitted and held by email.
// A StoreError result carries the underlying error; callers that must not
// block on release should log it and carry on.
func (m *Manager) Release(ctx context.Context, row int, email string) (ReleaseResult, error) {
	if !m.Locking() || row < store.FirstDataRow {
		return NotHeld, nil
	}

	submitted, err := m.store.IsSubmitted(ctx, row)
	if err != nil {
		return StoreError, err
	}
	if submitted {
		return NotHeld, nil
	}

	holder, err := m.store.Value(ctx, row, store.ColClaimedBy)
	if err != nil {
		return StoreError, err
	}
	if holder == "" || holder != email {
		return NotHeld, nil
	}

	if err := m.clear(ctx, row); err != nil {
		return StoreError, err
	}
	return Released, nil
}

func (m *Manager) clear(ctx context.Context, row int) error {
	return m.store.SetFields(ctx, row,
		store.Field{Name: store.ColClaimedBy, Value: ""},
		store.Field{Name: store.ColClaimedAt, Value: ""},
	)
}

// IsStale reports whether a claim stamped at claimedAt has outlived the TTL.
// Unparseable stamps are stale.
func (m *Manager) IsStale(claimedAt string, now time.Time) bool {
	t, err := time.Parse(time.RFC3339, claimedAt)
	if err != nil {
		return true
	}
	return now.Sub(t) > m.ttl
}

// Annotate fills the stale flag and a human readable claim age on summaries.
func (m *Manager) Annotate(list []models.PatientSummary) {
	now := m.store.Now()
	for i := range list {
		p := &list[i]
		if p.ClaimedBy == "" {
			continue
		}
		p.Stale = m.IsStale(p.ClaimedAt, now)
		if t, err := time.Parse(time.RFC3339, p.ClaimedAt); err == nil {
			p.ClaimedAgo = humanize.RelTime(t, now, "ago", "from now")
		}
	}
}

// ReleaseStale force-clears every unsubmitted claim older than the TTL and
// returns the rows it released.
func (m *Manager) ReleaseStale(ctx context.Context) ([]int, error) {
	if !m.Locking() {
		return nil, nil
	}

	list, err := m.store.ListPatients(ctx, "")
	if err != nil {
		return nil, err
	}

	now := m.store.Now()
	released := []int{}
	for _, p := range list {
		if p.Submitted || p.ClaimedBy == "" || !m.IsStale(p.ClaimedAt, now) {
			continue
		}
		// Skip rows re-claimed since the listing was read
		at, err := m.store.Value(ctx, p.Row, store.ColClaimedAt)
		if err != nil {
			return released, err
		}
		if at != p.ClaimedAt {
			continue
		}
		if err := m.clear(ctx, p.Row); err != nil {
			return released, err
		}
		released = append(released, p.Row)
	}
	return released, nil
}

// Sweep runs ReleaseStale every interval until ctx is done.
func (m *Manager) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rows, err := m.ReleaseStale(ctx)
			if err != nil {
				slog.Error("stale claim sweep failed", "error", err)
				continue
			}
			if len(rows) > 0 {
				slog.Info("released stale claims", "rows", rows)
			}
		}
	}
}
