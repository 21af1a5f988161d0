package service

import (
	"context"
	"errors"

	"storeops/internal/storehours"
	"storeops/internal/timeclock/models"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
	"storeops/pkg/platform/sentinel"
	"storeops/pkg/requestcontext"
)

// TodayResult lists a store's sessions for the current business date.
type TodayResult struct {
	Date     storehours.Date
	StoreID  id.StoreID
	Sessions []models.Session
}

// HistoryResult lists sessions that clocked in within the last Days days.
type HistoryResult struct {
	StoreID    id.StoreID
	EmployeeID id.EmployeeID
	Sessions   []models.Session
	Days       int
}

// Today returns the store's sessions for its current business date, newest first.
func (s *Service) Today(ctx context.Context, tenantID id.TenantID, storeID id.StoreID) (*TodayResult, error) {
	store, err := s.store(ctx, tenantID, storeID)
	if err != nil {
		return nil, err
	}
	date := s.policy.BusinessDate(hoursOf(store), requestcontext.Now(ctx))
	sessions, err := s.sessions.ListByStoreDate(ctx, tenantID, storeID, date)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
	}
	return &TodayResult{Date: date, StoreID: storeID, Sessions: sessions}, nil
}

// StoreHistory returns the store's sessions of the last days days. Zero days
// selects the default window.
func (s *Service) StoreHistory(ctx context.Context, tenantID id.TenantID, storeID id.StoreID, days int) (*HistoryResult, error) {
	days, err := historyDays(days, DefaultStoreHistoryDays)
	if err != nil {
		return nil, err
	}
	since := requestcontext.Now(ctx).AddDate(0, 0, -days)
	sessions, err := s.sessions.ListByStore(ctx, tenantID, storeID, since)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
	}
	return &HistoryResult{StoreID: storeID, Sessions: sessions, Days: days}, nil
}

// EmployeeHistory returns an employee's sessions of the last days days.
func (s *Service) EmployeeHistory(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, days int) (*HistoryResult, error) {
	days, err := historyDays(days, DefaultEmployeeHistoryDays)
	if err != nil {
		return nil, err
	}
	if _, err := s.employees.GetEmployee(ctx, tenantID, employeeID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Employee not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load employee")
	}
	since := requestcontext.Now(ctx).AddDate(0, 0, -days)
	sessions, err := s.sessions.ListByEmployee(ctx, tenantID, employeeID, since)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
	}
	return &HistoryResult{EmployeeID: employeeID, Sessions: sessions, Days: days}, nil
}

func historyDays(days, fallback int) (int, error) {
	if days == 0 {
		return fallback, nil
	}
	if days < 0 || days > maxHistoryDays {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "days must be between 1 and %d", maxHistoryDays)
	}
	return days, nil
}
