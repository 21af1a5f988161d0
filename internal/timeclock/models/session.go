// Package models holds the clock session record and its lifecycle states.
package models

import (
	"math"
	"time"

	"storeops/internal/storehours"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
)

// ClockOutType records how a session was closed.
type ClockOutType string

const (
	ClockOutManual ClockOutType = "MANUAL"
	ClockOutAuto   ClockOutType = "AUTO"
)

func (t ClockOutType) IsValid() bool {
	return t == ClockOutManual || t == ClockOutAuto
}

// State is the lifecycle position of an employee's session for a business day.
//
//	NoSession -> Open -> ClosedManual
//	             Open -> ClosedAuto
//
// Closed states are terminal.
type State int

const (
	StateNoSession State = iota
	StateOpen
	StateClosedManual
	StateClosedAuto
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosedManual:
		return "closed_manual"
	case StateClosedAuto:
		return "closed_auto"
	default:
		return "no_session"
	}
}

// Session is one clock-in/clock-out pair. It is created open and mutated
// exactly once to close it; sessions are never deleted.
type Session struct {
	ID            id.SessionID    `json:"entry_id"`
	TenantID      id.TenantID     `json:"tenant_id"`
	EmployeeID    id.EmployeeID   `json:"employee_id"`
	EmployeeName  string          `json:"employee_name"`
	StoreID       id.StoreID      `json:"store_id"`
	BusinessDate  storehours.Date `json:"business_date"`
	ClockIn       time.Time       `json:"clock_in"`
	ClockOut      *time.Time      `json:"clock_out"`
	ClockOutType  ClockOutType    `json:"clock_out_type,omitempty"`
	HoursWorked   *float64        `json:"hours_worked"`
	ConfidenceIn  *float64        `json:"clock_in_confidence"`
	ConfidenceOut *float64        `json:"clock_out_confidence"`
}

// NewSession opens a session clocked in at clockIn.
func NewSession(tenantID id.TenantID, employeeID id.EmployeeID, name string, storeID id.StoreID,
	date storehours.Date, clockIn time.Time, confidence *float64) *Session {
	return &Session{
		ID:           id.NewSessionID(),
		TenantID:     tenantID,
		EmployeeID:   employeeID,
		EmployeeName: name,
		StoreID:      storeID,
		BusinessDate: date,
		ClockIn:      clockIn.UTC(),
		ConfidenceIn: confidence,
	}
}

func (s *Session) State() State {
	if s == nil {
		return StateNoSession
	}
	if s.ClockOut == nil {
		return StateOpen
	}
	if s.ClockOutType == ClockOutAuto {
		return StateClosedAuto
	}
	return StateClosedManual
}

func (s *Session) IsOpen() bool {
	return s.State() == StateOpen
}

// Status is the listing label used by clients.
func (s *Session) Status() string {
	if s.IsOpen() {
		return "clocked_in"
	}
	return "clocked_out"
}

// CloseCommand is a conditional close: it applies only while the session is
// still open at write time.
type CloseCommand struct {
	TenantID      id.TenantID
	SessionID     id.SessionID
	ClockOut      time.Time
	Type          ClockOutType
	HoursWorked   float64
	ConfidenceOut *float64
}

// Close builds the command that ends the session at clockOut. A clock-out
// earlier than the clock-in is clamped to the clock-in, yielding zero hours.
func (s *Session) Close(clockOut time.Time, typ ClockOutType, confidence *float64) (CloseCommand, error) {
	if !typ.IsValid() {
		return CloseCommand{}, dErrors.Newf(dErrors.CodeInvariantViolation, "invalid clock out type %q", typ)
	}
	switch s.State() {
	case StateNoSession:
		return CloseCommand{}, dErrors.New(dErrors.CodeNotClockedIn, "not clocked in")
	case StateClosedManual, StateClosedAuto:
		return CloseCommand{}, dErrors.New(dErrors.CodeAlreadyClockedOut, "already clocked out")
	}
	if clockOut.Before(s.ClockIn) {
		clockOut = s.ClockIn
	}
	return CloseCommand{
		TenantID:      s.TenantID,
		SessionID:     s.ID,
		ClockOut:      clockOut.UTC(),
		Type:          typ,
		HoursWorked:   HoursBetween(s.ClockIn, clockOut),
		ConfidenceOut: confidence,
	}, nil
}

// Apply copies a close onto the in-memory session.
func (s *Session) Apply(cmd CloseCommand) {
	out := cmd.ClockOut
	hours := cmd.HoursWorked
	s.ClockOut = &out
	s.ClockOutType = cmd.Type
	s.HoursWorked = &hours
	s.ConfidenceOut = cmd.ConfidenceOut
}

// HoursBetween returns the elapsed hours rounded to two decimals.
func HoursBetween(in, out time.Time) float64 {
	return math.Round(out.Sub(in).Hours()*100) / 100
}
