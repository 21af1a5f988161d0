// Package store provides in-memory and PostgreSQL directory stores.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"storeops/internal/directory/models"
	"storeops/internal/face"
	id "storeops/pkg/domain"
	"storeops/pkg/platform/sentinel"
)

type storeKey struct {
	tenant id.TenantID
	store  id.StoreID
}

// InMemory is a directory backed by maps, used in development and tests.
type InMemory struct {
	mu        sync.RWMutex
	tenants   map[id.TenantID]*models.Tenant
	stores    map[storeKey]*models.Store
	employees map[id.EmployeeID]*models.Employee
}

func NewInMemory() *InMemory {
	return &InMemory{
		tenants:   make(map[id.TenantID]*models.Tenant),
		stores:    make(map[storeKey]*models.Store),
		employees: make(map[id.EmployeeID]*models.Employee),
	}
}

func (s *InMemory) PutTenant(_ context.Context, t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tenants[t.ID] = &cp
	return nil
}

func (s *InMemory) PutStore(_ context.Context, st *models.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[st.TenantID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *st
	s.stores[storeKey{st.TenantID, st.ID}] = &cp
	return nil
}

func (s *InMemory) PutEmployee(_ context.Context, e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[e.TenantID]; !ok {
		return sentinel.ErrNotFound
	}
	s.employees[e.ID] = cloneEmployee(e)
	return nil
}

func (s *InMemory) ListActiveTenants(_ context.Context) ([]models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		if t.IsActive() {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemory) GetStore(_ context.Context, tenantID id.TenantID, storeID id.StoreID) (*models.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stores[storeKey{tenantID, storeID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *InMemory) ListStores(_ context.Context, tenantID id.TenantID) ([]models.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Store
	for k, st := range s.stores {
		if k.tenant == tenantID {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) GetEmployee(_ context.Context, tenantID id.TenantID, employeeID id.EmployeeID) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[employeeID]
	if !ok || e.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	return cloneEmployee(e), nil
}

// ListRegistered returns face profiles of active, face-registered employees.
func (s *InMemory) ListRegistered(_ context.Context, tenantID id.TenantID) ([]face.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []face.Profile
	for _, e := range s.employees {
		if e.TenantID == tenantID && e.Active && e.FaceRegistered {
			out = append(out, cloneEmployee(e).Profile())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out, nil
}

func (s *InMemory) AppendDescriptor(_ context.Context, tenantID id.TenantID, employeeID id.EmployeeID, probe face.Descriptor, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[employeeID]
	if !ok || e.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	e.Descriptors = face.Append(e.Descriptors, append(face.Descriptor(nil), probe...), limit)
	return nil
}

func (s *InMemory) Enroll(_ context.Context, tenantID id.TenantID, employeeID id.EmployeeID, descriptors []face.Descriptor, image string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[employeeID]
	if !ok || e.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	e.Descriptors = cloneDescriptors(descriptors)
	e.FaceRegistered = true
	e.FaceRegisteredAt = &at
	if image != "" {
		e.FaceImage = image
	}
	return nil
}

func cloneEmployee(e *models.Employee) *models.Employee {
	cp := *e
	cp.Descriptors = cloneDescriptors(e.Descriptors)
	return &cp
}

func cloneDescriptors(in []face.Descriptor) []face.Descriptor {
	if in == nil {
		return nil
	}
	out := make([]face.Descriptor, len(in))
	for i, d := range in {
		out[i] = append(face.Descriptor(nil), d...)
	}
	return out
}
