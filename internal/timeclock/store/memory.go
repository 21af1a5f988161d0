// Package store provides in-memory and PostgreSQL clock session stores.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"storeops/internal/storehours"
	"storeops/internal/timeclock/models"
	id "storeops/pkg/domain"
	"storeops/pkg/platform/sentinel"
)

type openKey struct {
	tenant   id.TenantID
	employee id.EmployeeID
	date     storehours.Date
}

// InMemory keeps sessions in maps. The open index mirrors the partial unique
// index of the PostgreSQL schema.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
	open     map[openKey]id.SessionID
}

func NewInMemory() *InMemory {
	return &InMemory{
		sessions: make(map[id.SessionID]*models.Session),
		open:     make(map[openKey]id.SessionID),
	}
}

func keyOf(s *models.Session) openKey {
	return openKey{tenant: s.TenantID, employee: s.EmployeeID, date: s.BusinessDate}
}

func (s *InMemory) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return sentinel.ErrConflict
	}
	if session.IsOpen() {
		if _, exists := s.open[keyOf(session)]; exists {
			return sentinel.ErrConflict
		}
		s.open[keyOf(session)] = session.ID
	}
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *InMemory) Get(_ context.Context, tenantID id.TenantID, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok || session.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *InMemory) FindOpen(_ context.Context, tenantID id.TenantID, employeeID id.EmployeeID, date storehours.Date) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sid, ok := s.open[openKey{tenant: tenantID, employee: employeeID, date: date}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.sessions[sid]
	return &cp, nil
}

func (s *InMemory) CloseIfOpen(_ context.Context, cmd models.CloseCommand) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[cmd.SessionID]
	if !ok || session.TenantID != cmd.TenantID {
		return false, sentinel.ErrNotFound
	}
	if !session.IsOpen() {
		return false, nil
	}
	delete(s.open, keyOf(session))
	session.Apply(cmd)
	return true, nil
}

func (s *InMemory) ListOpenByStore(_ context.Context, tenantID id.TenantID, storeID id.StoreID, through storehours.Date) ([]models.Session, error) {
	return s.collect(func(m *models.Session) bool {
		return m.TenantID == tenantID && m.StoreID == storeID && m.IsOpen() && !through.Before(m.BusinessDate)
	}, true), nil
}

func (s *InMemory) ListByStoreDate(_ context.Context, tenantID id.TenantID, storeID id.StoreID, date storehours.Date) ([]models.Session, error) {
	return s.collect(func(m *models.Session) bool {
		return m.TenantID == tenantID && m.StoreID == storeID && m.BusinessDate == date
	}, false), nil
}

func (s *InMemory) ListByStore(_ context.Context, tenantID id.TenantID, storeID id.StoreID, since time.Time) ([]models.Session, error) {
	return s.collect(func(m *models.Session) bool {
		return m.TenantID == tenantID && m.StoreID == storeID && !m.ClockIn.Before(since)
	}, false), nil
}

func (s *InMemory) ListByEmployee(_ context.Context, tenantID id.TenantID, employeeID id.EmployeeID, since time.Time) ([]models.Session, error) {
	return s.collect(func(m *models.Session) bool {
		return m.TenantID == tenantID && m.EmployeeID == employeeID && !m.ClockIn.Before(since)
	}, false), nil
}

// collect returns matching sessions ordered by clock-in, newest first unless
// ascending is set.
func (s *InMemory) collect(match func(*models.Session) bool, ascending bool) []models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Session
	for _, session := range s.sessions {
		if match(session) {
			out = append(out, *session)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].ClockIn.Before(out[j].ClockIn)
		}
		return out[j].ClockIn.Before(out[i].ClockIn)
	})
	return out
}
