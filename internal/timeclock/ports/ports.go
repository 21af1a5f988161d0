// Package ports declares what the clock service needs from storage, the
// directory, face identification and alerting.
package ports

import (
	"context"
	"time"

	"storeops/internal/alert"
	dirmodels "storeops/internal/directory/models"
	"storeops/internal/face"
	"storeops/internal/storehours"
	"storeops/internal/timeclock/models"
	id "storeops/pkg/domain"
)

// SessionStore persists clock sessions. Implementations return
// sentinel.ErrNotFound for missing rows and sentinel.ErrConflict when an open
// session already exists for the employee and business date.
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, tenantID id.TenantID, sessionID id.SessionID) (*models.Session, error)
	// FindOpen returns the employee's open session for a business date.
	FindOpen(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, date storehours.Date) (*models.Session, error)
	// CloseIfOpen applies cmd only while clock_out is null. applied is false
	// when another writer closed the session first.
	CloseIfOpen(ctx context.Context, cmd models.CloseCommand) (applied bool, err error)
	// ListOpenByStore returns open sessions of a store with business date on or
	// before through, oldest first.
	ListOpenByStore(ctx context.Context, tenantID id.TenantID, storeID id.StoreID, through storehours.Date) ([]models.Session, error)
	ListByStoreDate(ctx context.Context, tenantID id.TenantID, storeID id.StoreID, date storehours.Date) ([]models.Session, error)
	ListByStore(ctx context.Context, tenantID id.TenantID, storeID id.StoreID, since time.Time) ([]models.Session, error)
	ListByEmployee(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID, since time.Time) ([]models.Session, error)
}

// StoreDirectory resolves stores and their hours.
type StoreDirectory interface {
	GetStore(ctx context.Context, tenantID id.TenantID, storeID id.StoreID) (*dirmodels.Store, error)
}

// EmployeeDirectory resolves employees.
type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, tenantID id.TenantID, employeeID id.EmployeeID) (*dirmodels.Employee, error)
}

// Identifier resolves a face probe to an employee.
type Identifier interface {
	Validate(probe face.Descriptor) error
	Identify(ctx context.Context, tenantID id.TenantID, probe face.Descriptor) (*face.Match, error)
}

// AlertPublisher delivers manager alerts.
type AlertPublisher interface {
	Publish(ctx context.Context, a alert.Alert) error
}
