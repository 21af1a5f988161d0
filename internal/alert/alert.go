// Package alert builds manager notifications raised by attendance events and
// publishes them to Kafka.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "storeops/pkg/domain"
)

type Type string

const (
	TypeLateClockIn  Type = "late_clock_in"
	TypeAutoClockout Type = "auto_clockout"
)

// Alert is a notification addressed to a store manager.
type Alert struct {
	ID              uuid.UUID     `json:"id"`
	TenantID        id.TenantID   `json:"tenant_id"`
	StoreID         id.StoreID    `json:"store_id"`
	ManagerUsername string        `json:"manager_username,omitempty"`
	Type            Type          `json:"alert_type"`
	Title           string        `json:"title"`
	Message         string        `json:"message"`
	EmployeeID      id.EmployeeID `json:"employee_id"`
	EmployeeName    string        `json:"employee_name"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Publisher delivers alerts. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, a Alert) error
}

// LateClockIn describes a clock-in after the store's opening time.
type LateClockIn struct {
	TenantID        id.TenantID
	StoreID         id.StoreID
	ManagerUsername string
	EmployeeID      id.EmployeeID
	EmployeeName    string
	ClockIn         time.Time // in the store's zone
	Opening         string
	Timezone        string
	MinutesLate     int
}

// NewLateClockIn builds the manager alert for a late arrival.
func NewLateClockIn(e LateClockIn) Alert {
	unit := "minutes"
	if e.MinutesLate == 1 {
		unit = "minute"
	}
	return Alert{
		ID:              uuid.New(),
		TenantID:        e.TenantID,
		StoreID:         e.StoreID,
		ManagerUsername: e.ManagerUsername,
		Type:            TypeLateClockIn,
		Title:           "Late Clock-In: " + e.EmployeeName,
		Message: fmt.Sprintf("%s clocked in %d %s late at %s (%s). Store opening time is %s.",
			e.EmployeeName, e.MinutesLate, unit, e.ClockIn.Format("15:04"), e.Timezone, e.Opening),
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		CreatedAt:    e.ClockIn.UTC(),
	}
}

// AutoClockout describes a session closed by the reconciler.
type AutoClockout struct {
	TenantID        id.TenantID
	StoreID         id.StoreID
	ManagerUsername string
	EmployeeID      id.EmployeeID
	EmployeeName    string
	ClockOut        time.Time // in the store's zone
	Closing         string
	Timezone        string
	HoursWorked     float64
}

// NewAutoClockout builds the manager alert for a forgotten clock-out.
func NewAutoClockout(e AutoClockout) Alert {
	return Alert{
		ID:              uuid.New(),
		TenantID:        e.TenantID,
		StoreID:         e.StoreID,
		ManagerUsername: e.ManagerUsername,
		Type:            TypeAutoClockout,
		Title:           "Auto Clock-Out: " + e.EmployeeName,
		Message: fmt.Sprintf("%s did not clock out and was automatically clocked out at %s (%s) after closing time %s. Hours recorded: %.2f.",
			e.EmployeeName, e.ClockOut.Format("15:04"), e.Timezone, e.Closing, e.HoursWorked),
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		CreatedAt:    e.ClockOut.UTC(),
	}
}
