package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Claim modes
const (
	ClaimModeLock = "lock"
	ClaimModeOpen = "open"
)

// Submission policies
const (
	PolicyLedger = "ledger"
	PolicyRow    = "row"
)

// StatusSubmitted is written to submission_status by the row policy
const StatusSubmitted = "submitted"

// Value is a JSON scalar kept as its string form.
// Strings are taken verbatim, numbers and booleans as written, null as "".
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*v = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}

	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	switch x.(type) {
	case float64, bool:
		*v = Value(b)
		return nil
	}
	return fmt.Errorf("unsupported value %s", b)
}

func (v Value) String() string { return string(v) }

// Int parses the value as a row number. Empty parses as 0 and integral floats
// such as 3.0 are accepted.
func (v Value) Int() (int, error) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("not a whole number: %s", s)
	}
	return int(f), nil
}

// Request types

type SetUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ClaimRequest struct {
	Row     Value `json:"row"`
	PrevRow Value `json:"prev_row"`
}

type ReleaseRequest struct {
	Row Value `json:"row"`
}

type PredictionRequest struct {
	Row        Value `json:"row"`
	Outcome    Value `json:"outcome"`
	Confidence Value `json:"confidence"`
	SNOT22     Value `json:"snot22"`
}

// Response types

type OKResponse struct {
	OK bool `json:"ok"`
}

type UserResponse struct {
	OK   bool      `json:"ok"`
	User *Identity `json:"user"`
}

type ProgressResponse struct {
	OK        bool `json:"ok"`
	Completed int  `json:"completed"`
	Total     int  `json:"total"`
	NextRow   *int `json:"next_row"`
}

type CompleteResponse struct {
	OK       bool `json:"ok"`
	Complete bool `json:"complete"`
}

type NextPatientResponse struct {
	OK           bool           `json:"ok"`
	Row          int            `json:"row"`
	Record       map[string]any `json:"record"`
	MySubmission *Prediction    `json:"my_submission"`
}

type PatientsResponse struct {
	Patients []PatientSummary `json:"patients"`
}

type PatientWithSubmission struct {
	Row          int            `json:"row"`
	Record       map[string]any `json:"record"`
	MySubmission *Prediction    `json:"my_submission"`
}

type LandingResponse struct {
	OK        bool     `json:"ok"`
	Service   string   `json:"service"`
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

// Domain types

// Identity is the reviewer held in the session.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Patient is one row of the patients tab with its non-empty values.
type Patient struct {
	Row    int            `json:"row"`
	Record map[string]any `json:"record"`
}

type PatientSummary struct {
	Row         int    `json:"row"`
	Submitted   bool   `json:"submitted"`
	Available   bool   `json:"available"`
	LockedByYou bool   `json:"locked_by_you"`
	ClaimedBy   string `json:"claimed_by"`
	ClaimedAt   string `json:"claimed_at"`
	CanEdit     bool   `json:"can_edit"`
	Stale       bool   `json:"stale"`
	ClaimedAgo  string `json:"claimed_ago,omitempty"`
	MySubmitted bool   `json:"my_submitted"`
}

// Prediction is a reviewer's answer for one patient.
type Prediction struct {
	Outcome    string `json:"outcome"`
	Confidence string `json:"confidence"`
	SNOT22     string `json:"snot22"`
}

// Error response

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
