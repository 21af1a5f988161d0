package handler

import (
	"strings"

	"storeops/internal/face"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
)

// ClockInRequest is the body of POST /timeclock/clock-in.
type ClockInRequest struct {
	EmployeeID string `json:"employee_id"`
	StoreID    string `json:"store_id,omitempty"`

	employeeID id.EmployeeID
	storeID    id.StoreID
}

func (r *ClockInRequest) Validate() error {
	employeeID, err := id.ParseEmployeeID(r.EmployeeID)
	if err != nil {
		return err
	}
	r.employeeID = employeeID
	r.storeID, err = optionalStore(r.StoreID)
	return err
}

// ClockOutRequest is the body of POST /timeclock/clock-out.
type ClockOutRequest struct {
	EntryID string `json:"entry_id"`

	entryID id.SessionID
}

func (r *ClockOutRequest) Validate() error {
	entryID, err := id.ParseSessionID(r.EntryID)
	if err != nil {
		return err
	}
	r.entryID = entryID
	return nil
}

// FaceClockRequest is the body of the face clock-in and clock-out endpoints.
// Shape checks on the descriptor are left to the identifier.
type FaceClockRequest struct {
	FaceDescriptor face.Descriptor `json:"face_descriptor"`
	StoreID        string          `json:"store_id,omitempty"`

	storeID id.StoreID
}

func (r *FaceClockRequest) Validate() error {
	if len(r.FaceDescriptor) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "face_descriptor is required")
	}
	var err error
	r.storeID, err = optionalStore(r.StoreID)
	return err
}

func optionalStore(raw string) (id.StoreID, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return id.ParseStoreID(raw)
}
