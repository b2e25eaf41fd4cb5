package diag

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Note attaches a secondary position and message to a Report, preserving
// ordered notes (§6: "the data model preserves ordered notes and a primary
// message").
type Note struct {
	Pos     PosID  `json:"pos"`
	Message string `json:"message"`
}

// Report is the canonical structured error/diagnostic value every pass
// returns. It survives an errors.As() unwrap via ReportError.
type Report struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Kind    Kind           `json:"kind"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Pos     PosID          `json:"pos,omitempty"`
	Notes   []Note         `json:"notes,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

const schemaV1 = "filament.diag/v1"

// New builds a Report with the standard schema tag.
func New(code string, kind Kind, phase, message string, pos PosID) *Report {
	return &Report{
		Schema:  schemaV1,
		Code:    code,
		Kind:    kind,
		Phase:   phase,
		Message: message,
		Pos:     pos,
	}
}

// WithNote appends an ordered note and returns the same Report for chaining.
func (r *Report) WithNote(pos PosID, message string) *Report {
	r.Notes = append(r.Notes, Note{Pos: pos, Message: message})
	return r
}

// WithData attaches structured data (e.g. a ProofFailed counterexample
// binding under "model").
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

// ReportError wraps a Report so it can travel through a normal Go error
// return while remaining recoverable via AsReport.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown diagnostic"
	}
	return fmt.Sprintf("%s: %s", e.Rep.Code, e.Rep.Message)
}

// Wrap turns a Report into an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// AsReport extracts a Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// ToJSON renders a Report deterministically (sorted map keys via the
// standard encoding/json map ordering, which is already sorted).
func (r *Report) ToJSON(indent bool) (string, error) {
	var (
		b   []byte
		err error
	)
	if indent {
		b, err = json.MarshalIndent(r, "", "  ")
	} else {
		b, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MultiError aggregates every Report produced during a single pass over a
// component, so a failing component reports everything wrong with it at
// once rather than stopping at the first problem (spec §7: "the interval
// checker accumulates all obligations per component before invoking the
// solver").
type MultiError struct {
	Reports []*Report
}

func (m *MultiError) Error() string {
	if len(m.Reports) == 0 {
		return "no errors"
	}
	if len(m.Reports) == 1 {
		return m.Reports[0].Error2()
	}
	return fmt.Sprintf("%d diagnostics (first: %s)", len(m.Reports), m.Reports[0].Error2())
}

// Error2 gives Report an Error()-shaped string without making Report
// itself satisfy the error interface (Report is a plain data value; only
// ReportError is an error).
func (r *Report) Error2() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// NewMultiError builds a MultiError, returning nil if reports is empty so
// callers can write `return NewMultiError(reports)` unconditionally.
func NewMultiError(reports []*Report) error {
	if len(reports) == 0 {
		return nil
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Pos < reports[j].Pos
	})
	return &MultiError{Reports: reports}
}

// Add appends a report (nil-safe: does nothing on a nil report).
func (m *MultiError) Add(r *Report) {
	if r == nil {
		return
	}
	m.Reports = append(m.Reports, r)
}
