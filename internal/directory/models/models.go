// Package models holds the tenant, store and employee records the attendance
// engine reads from the directory.
package models

import (
	"time"

	"storeops/internal/face"
	"storeops/internal/storehours"
	id "storeops/pkg/domain"
)

type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusCancelled TenantStatus = "cancelled"
)

// Tenant is a customer organization. Only active tenants are swept by the
// all-tenants reconciler.
type Tenant struct {
	ID     id.TenantID  `json:"id"`
	Name   string       `json:"name"`
	Status TenantStatus `json:"status"`
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Store is a retail location. Its ID is the tenant-scoped store code.
type Store struct {
	TenantID        id.TenantID      `json:"tenant_id"`
	ID              id.StoreID       `json:"store_id"`
	Hours           storehours.Hours `json:"hours"`
	ManagerUsername string           `json:"manager_username,omitempty"`
}

// Employee is a member of staff who clocks in and out.
type Employee struct {
	ID               id.EmployeeID     `json:"id"`
	TenantID         id.TenantID       `json:"tenant_id"`
	StoreID          id.StoreID        `json:"store_id,omitempty"`
	Name             string            `json:"name"`
	Active           bool              `json:"active"`
	FaceRegistered   bool              `json:"face_registered"`
	Descriptors      []face.Descriptor `json:"-"`
	FaceImage        string            `json:"-"`
	FaceRegisteredAt *time.Time        `json:"face_registered_at,omitempty"`
}

// Profile projects the employee onto the matcher's view.
func (e *Employee) Profile() face.Profile {
	return face.Profile{
		EmployeeID:   e.ID,
		EmployeeName: e.Name,
		Descriptors:  e.Descriptors,
	}
}
