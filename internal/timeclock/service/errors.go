package service

import (
	"fmt"
	"time"

	"storeops/internal/timeclock/models"
	dErrors "storeops/pkg/domain-errors"
)

// OpenSessionError reports the session that blocks a clock-in. It exposes the
// existing clock-in time in the error envelope.
type OpenSessionError struct {
	Session models.Session
}

func (e *OpenSessionError) Error() string {
	return fmt.Sprintf("open session %s", e.Session.ID)
}

func (e *OpenSessionError) ErrorMetadata() any {
	return struct {
		EntryID      string    `json:"entry_id"`
		EmployeeName string    `json:"employee_name"`
		ClockInTime  time.Time `json:"clock_in_time"`
	}{
		EntryID:      e.Session.ID.String(),
		EmployeeName: e.Session.EmployeeName,
		ClockInTime:  e.Session.ClockIn,
	}
}

func alreadyClockedIn(name string, existing *models.Session) error {
	err := &dErrors.Error{
		Code:    dErrors.CodeAlreadyClockedIn,
		Message: fmt.Sprintf("%s is already clocked in today.", name),
	}
	if existing != nil {
		err.Err = &OpenSessionError{Session: *existing}
	}
	return err
}

func notClockedIn(name string) error {
	return dErrors.Newf(dErrors.CodeNotClockedIn, "%s is not clocked in today. Please clock in first.", name)
}
