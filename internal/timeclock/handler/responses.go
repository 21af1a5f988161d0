package handler

import (
	"time"

	"storeops/internal/timeclock/models"
	"storeops/internal/timeclock/service"
)

// EntryResponse is one session in listings.
type EntryResponse struct {
	EntryID            string     `json:"entry_id"`
	TenantID           string     `json:"tenant_id"`
	EmployeeID         string     `json:"employee_id"`
	EmployeeName       string     `json:"employee_name"`
	StoreID            string     `json:"store_id"`
	BusinessDate       string     `json:"business_date"`
	ClockIn            time.Time  `json:"clock_in"`
	ClockOut           *time.Time `json:"clock_out"`
	HoursWorked        *float64   `json:"hours_worked"`
	ClockInConfidence  *float64   `json:"clock_in_confidence"`
	ClockOutConfidence *float64   `json:"clock_out_confidence"`
	ClockOutType       *string    `json:"clock_out_type"`
	Status             string     `json:"status"`
}

func toEntry(s models.Session) EntryResponse {
	var outType *string
	if s.ClockOutType != "" {
		t := string(s.ClockOutType)
		outType = &t
	}
	return EntryResponse{
		EntryID:            s.ID.String(),
		TenantID:           s.TenantID.String(),
		EmployeeID:         s.EmployeeID.String(),
		EmployeeName:       s.EmployeeName,
		StoreID:            s.StoreID.String(),
		BusinessDate:       s.BusinessDate.String(),
		ClockIn:            s.ClockIn,
		ClockOut:           s.ClockOut,
		HoursWorked:        s.HoursWorked,
		ClockInConfidence:  s.ConfidenceIn,
		ClockOutConfidence: s.ConfidenceOut,
		ClockOutType:       outType,
		Status:             s.Status(),
	}
}

func toEntries(sessions []models.Session) []EntryResponse {
	out := make([]EntryResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toEntry(s))
	}
	return out
}

// ClockInResponse is returned by POST /timeclock/clock-in.
type ClockInResponse struct {
	EntryID string `json:"entry_id"`
}

// ClockOutResponse is returned by POST /timeclock/clock-out.
type ClockOutResponse struct {
	OK           bool       `json:"ok"`
	AutoClockout bool       `json:"auto_clockout,omitempty"`
	ClockOutTime *time.Time `json:"clock_out_time,omitempty"`
	Message      string     `json:"message,omitempty"`
}

// FaceClockResponse is returned by the face clock endpoints.
type FaceClockResponse struct {
	Success      bool       `json:"success"`
	AutoClockout bool       `json:"auto_clockout,omitempty"`
	EntryID      string     `json:"entry_id"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	ClockInTime  time.Time  `json:"clock_in_time"`
	ClockOutTime *time.Time `json:"clock_out_time,omitempty"`
	HoursWorked  *float64   `json:"hours_worked,omitempty"`
	Confidence   *float64   `json:"confidence,omitempty"`
	Message      string     `json:"message,omitempty"`
}

func fromClockIn(res *service.ClockInResult) FaceClockResponse {
	s := res.Session
	return FaceClockResponse{
		Success:      true,
		EntryID:      s.ID.String(),
		EmployeeID:   s.EmployeeID.String(),
		EmployeeName: s.EmployeeName,
		ClockInTime:  s.ClockIn,
		Confidence:   s.ConfidenceIn,
	}
}

func fromClockOut(res *service.ClockOutResult) FaceClockResponse {
	s := res.Session
	return FaceClockResponse{
		Success:      true,
		AutoClockout: res.Auto,
		EntryID:      s.ID.String(),
		EmployeeID:   s.EmployeeID.String(),
		EmployeeName: s.EmployeeName,
		ClockInTime:  s.ClockIn,
		ClockOutTime: s.ClockOut,
		HoursWorked:  s.HoursWorked,
		Confidence:   s.ConfidenceOut,
		Message:      res.Message,
	}
}

// TodayResponse is returned by GET /timeclock/today.
type TodayResponse struct {
	Date       string          `json:"date"`
	StoreID    string          `json:"store_id"`
	Employees  []EntryResponse `json:"employees"`
	TotalCount int             `json:"total_count"`
}

// HistoryResponse is returned by the history listings. Exactly one of
// StoreID and EmployeeID is set.
type HistoryResponse struct {
	StoreID    string          `json:"store_id,omitempty"`
	EmployeeID string          `json:"employee_id,omitempty"`
	Entries    []EntryResponse `json:"entries"`
	TotalCount int             `json:"total_count"`
	Days       int             `json:"days"`
}
