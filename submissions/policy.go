// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package submissions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danielhkuo/expert-survey/claims"
	"github.com/danielhkuo/expert-survey/models"
	"github.com/danielhkuo/expert-survey/store"
)

var (
	ErrNotSubmitted  = errors.New("not submitted")
	ErrEmailMismatch = errors.New("email mismatch")
	ErrUnknownPolicy = errors.New("unknown submission policy")
)

// Policy decides where predictions live and who may write them.
type Policy interface {
	Name() string
	Submit(ctx context.Context, who models.Identity, row int, p models.Prediction) error
	Update(ctx context.Context, who models.Identity, row int, p models.Prediction) error
	// UserRows are the rows who has submitted, for progress counts.
	UserRows(ctx context.Context, email string) (map[int]bool, error)
	// DoneRows are the rows navigation should skip for email.
	DoneRows(ctx context.Context, email string) (map[int]bool, error)
	Lookup(ctx context.Context, email string, row int) (*models.Prediction, error)
}

// NewPolicy returns the policy registered under name. The ledger may be nil
// for the row policy.
func NewPolicy(name string, s *store.Store, l *Ledger) (Policy, error) {
	switch name {
	case models.PolicyLedger:
		if l == nil {
			return nil, fmt.Errorf("ledger policy needs a submissions tab")
		}
		return &LedgerPolicy{store: s, ledger: l}, nil
	case models.PolicyRow:
		return &RowPolicy{store: s}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

func checkRow(ctx context.Context, s *store.Store, row int) error {
	if row < store.FirstDataRow {
		return claims.ErrBadRow
	}
	exists, err := s.Exists(ctx, row)
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return nil
}

// LedgerPolicy gives every reviewer their own submission per row,
// independent of other reviewers and of the patient row's own status.
type LedgerPolicy struct {
	store  *store.Store
	ledger *Ledger
}

func (p *LedgerPolicy) Name() string { return models.PolicyLedger }

func (p *LedgerPolicy) Submit(ctx context.Context, who models.Identity, row int, pred models.Prediction) error {
	if err := checkRow(ctx, p.store, row); err != nil {
		return err
	}
	_, err := p.ledger.Upsert(ctx, who.Email, who.Name, row, pred)
	return err
}

func (p *LedgerPolicy) Update(ctx context.Context, who models.Identity, row int, pred models.Prediction) error {
	if err := checkRow(ctx, p.store, row); err != nil {
		return err
	}
	existing, err := p.ledger.Get(ctx, who.Email, row)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotSubmitted
	}
	_, err = p.ledger.Upsert(ctx, who.Email, who.Name, row, pred)
	return err
}

func (p *LedgerPolicy) UserRows(ctx context.Context, email string) (map[int]bool, error) {
	return p.ledger.UserRows(ctx, email)
}

func (p *LedgerPolicy) DoneRows(ctx context.Context, email string) (map[int]bool, error) {
	return p.ledger.UserRows(ctx, email)
}

func (p *LedgerPolicy) Lookup(ctx context.Context, email string, row int) (*models.Prediction, error) {
	return p.ledger.Get(ctx, email, row)
}

// RowPolicy stores a single prediction on the patient row itself. Only the
// claim holder (or anyone, on an unclaimed row) may submit, and only the
// recorded reviewer may edit afterwards.
type RowPolicy struct {
	store *store.Store
}

func (p *RowPolicy) Name() string { return models.PolicyRow }

func predictionFields(pred models.Prediction) []store.Field {
	return []store.Field{
		{Name: store.ColPrediction, Value: pred.Outcome},
		{Name: store.ColConfidence, Value: pred.Confidence},
		{Name: store.ColSNOT22, Value: pred.SNOT22},
	}
}

func (p *RowPolicy) Submit(ctx context.Context, who models.Identity, row int, pred models.Prediction) error {
	if err := checkRow(ctx, p.store, row); err != nil {
		return err
	}

	holder, err := p.store.Value(ctx, row, store.ColClaimedBy)
	if err != nil {
		return err
	}
	if holder != "" && holder != who.Email {
		return claims.ErrLockedByOther
	}

	fields := []store.Field{
		{Name: store.ColReviewerName, Value: who.Name},
		{Name: store.ColReviewerEmail, Value: who.Email},
	}
	fields = append(fields, predictionFields(pred)...)
	fields = append(fields,
		store.Field{Name: store.ColSubmissionStatus, Value: models.StatusSubmitted},
		store.Field{Name: store.ColClaimedBy, Value: ""},
		store.Field{Name: store.ColClaimedAt, Value: ""},
	)
	return p.store.SetFields(ctx, row, fields...)
}

func (p *RowPolicy) Update(ctx context.Context, who models.Identity, row int, pred models.Prediction) error {
	if err := checkRow(ctx, p.store, row); err != nil {
		return err
	}

	status, err := p.store.Value(ctx, row, store.ColSubmissionStatus)
	if err != nil {
		return err
	}
	if strings.ToLower(strings.TrimSpace(status)) != models.StatusSubmitted {
		return ErrNotSubmitted
	}
	reviewer, err := p.store.Value(ctx, row, store.ColReviewerEmail)
	if err != nil {
		return err
	}
	if !sameEmail(reviewer, who.Email) {
		return ErrEmailMismatch
	}

	if err := p.store.SetFields(ctx, row, predictionFields(pred)...); err != nil {
		return err
	}

	countVal, err := p.store.Value(ctx, row, store.ColEditCount)
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(strings.TrimSpace(countVal))
	if err != nil {
		count = 0
	}
	return p.store.SetFields(ctx, row,
		store.Field{Name: store.ColEditCount, Value: strconv.Itoa(count + 1)},
		store.Field{Name: store.ColLastEditedAt, Value: p.store.Timestamp()},
	)
}

func (p *RowPolicy) UserRows(ctx context.Context, email string) (map[int]bool, error) {
	list, err := p.store.ListPatients(ctx, email)
	if err != nil {
		return nil, err
	}
	rows := make(map[int]bool)
	for _, s := range list {
		if s.CanEdit {
			rows[s.Row] = true
		}
	}
	return rows, nil
}

// DoneRows is every submitted row: once submitted, nobody else can take it.
func (p *RowPolicy) DoneRows(ctx context.Context, _ string) (map[int]bool, error) {
	list, err := p.store.ListPatients(ctx, "")
	if err != nil {
		return nil, err
	}
	rows := make(map[int]bool)
	for _, s := range list {
		if s.Submitted {
			rows[s.Row] = true
		}
	}
	return rows, nil
}

func (p *RowPolicy) Lookup(ctx context.Context, email string, row int) (*models.Prediction, error) {
	patient, err := p.store.GetPatient(ctx, row)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if patient.Record["submitted"] != true {
		return nil, nil
	}
	reviewer, _ := patient.Record[store.ColReviewerEmail].(string)
	if email == "" || !sameEmail(reviewer, email) {
		return nil, nil
	}
	get := func(k string) string {
		v, _ := patient.Record[k].(string)
		return v
	}
	return &models.Prediction{
		Outcome:    get(store.ColPrediction),
		Confidence: get(store.ColConfidence),
		SNOT22:     get(store.ColSNOT22),
	}, nil
}
