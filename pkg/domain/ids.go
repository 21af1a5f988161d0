// Package domain defines typed identifiers shared across modules.
//
// Each ID wraps a uuid.UUID so the compiler rejects passing an employee ID
// where a tenant ID is expected. Parse functions are the trust boundary:
// they reject empty, malformed, and nil UUIDs.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "storeops/pkg/domain-errors"
)

type (
	TenantID   uuid.UUID
	EmployeeID uuid.UUID
	SessionID  uuid.UUID
)

// StoreID is the tenant-scoped store code (the store name in the directory).
type StoreID string

func parseUUID(s, field string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", field)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", field)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be nil", field)
	}
	return parsed, nil
}

func ParseTenantID(s string) (TenantID, error) {
	u, err := parseUUID(s, "tenant_id")
	return TenantID(u), err
}

func ParseEmployeeID(s string) (EmployeeID, error) {
	u, err := parseUUID(s, "employee_id")
	return EmployeeID(u), err
}

func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "entry_id")
	return SessionID(u), err
}

// ParseStoreID trims and validates a store code.
func ParseStoreID(s string) (StoreID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "store_id is required")
	}
	if len(s) > 100 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "store_id must be at most 100 characters")
	}
	return StoreID(s), nil
}

func NewSessionID() SessionID { return SessionID(uuid.New()) }

func (id TenantID) String() string   { return uuid.UUID(id).String() }
func (id EmployeeID) String() string { return uuid.UUID(id).String() }
func (id SessionID) String() string  { return uuid.UUID(id).String() }
func (id StoreID) String() string    { return string(id) }

func (id TenantID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id EmployeeID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func (id TenantID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id EmployeeID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id SessionID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *TenantID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *EmployeeID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *SessionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
