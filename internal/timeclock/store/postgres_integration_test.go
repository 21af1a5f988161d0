//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"storeops/internal/storehours"
	"storeops/internal/timeclock/models"
	"storeops/internal/timeclock/store"
	id "storeops/pkg/domain"
	"storeops/pkg/platform/sentinel"
	"storeops/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	tenantID id.TenantID
	day      storehours.Date
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "clock_sessions", "employees", "stores", "tenants"))

	s.tenantID = id.TenantID(uuid.New())
	s.Require().NoError(s.postgres.Exec(ctx,
		`INSERT INTO tenants (id, name, status) VALUES ($1, 'Metro', 'active')`, uuid.UUID(s.tenantID)))
	s.day = storehours.Date{Year: 2024, Month: time.June, Day: 3}
}

func (s *PostgresStoreSuite) newSession(employeeID id.EmployeeID, hour int) *models.Session {
	clockIn := time.Date(2024, 6, 3, hour, 0, 0, 0, time.UTC)
	return models.NewSession(s.tenantID, employeeID, "Ana", "Lawrence", s.day, clockIn, nil)
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	confidence := 0.87
	session := s.newSession(id.EmployeeID(uuid.New()), 9)
	session.ConfidenceIn = &confidence
	s.Require().NoError(s.store.Create(ctx, session))

	found, err := s.store.FindOpen(ctx, s.tenantID, session.EmployeeID, s.day)
	s.Require().NoError(err)
	s.Equal(session.ID, found.ID)
	s.Equal(s.day, found.BusinessDate)
	s.True(session.ClockIn.Equal(found.ClockIn))
	s.Require().NotNil(found.ConfidenceIn)
	s.InDelta(0.87, *found.ConfidenceIn, 1e-9)
	s.Nil(found.ClockOut)
}

func (s *PostgresStoreSuite) TestPartialUniqueIndexRejectsSecondOpenSession() {
	ctx := context.Background()
	employeeID := id.EmployeeID(uuid.New())
	first := s.newSession(employeeID, 9)
	s.Require().NoError(s.store.Create(ctx, first))

	err := s.store.Create(ctx, s.newSession(employeeID, 10))
	s.ErrorIs(err, sentinel.ErrConflict)

	cmd, err := first.Close(first.ClockIn.Add(time.Hour), models.ClockOutManual, nil)
	s.Require().NoError(err)
	applied, err := s.store.CloseIfOpen(ctx, cmd)
	s.Require().NoError(err)
	s.True(applied)

	s.NoError(s.store.Create(ctx, s.newSession(employeeID, 11)))
}

// TestConcurrentCloseAppliesOnce races manual and automatic closes against
// the conditional UPDATE.
func (s *PostgresStoreSuite) TestConcurrentCloseAppliesOnce() {
	ctx := context.Background()
	session := s.newSession(id.EmployeeID(uuid.New()), 9)
	s.Require().NoError(s.store.Create(ctx, session))

	const goroutines = 20
	var wg sync.WaitGroup
	var applied atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cp := *session
			typ := models.ClockOutAuto
			if i%2 == 0 {
				typ = models.ClockOutManual
			}
			cmd, err := cp.Close(cp.ClockIn.Add(time.Duration(i+1)*time.Minute), typ, nil)
			if err != nil {
				return
			}
			if ok, err := s.store.CloseIfOpen(ctx, cmd); err == nil && ok {
				applied.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), applied.Load())
	stored, err := s.store.Get(ctx, s.tenantID, session.ID)
	s.Require().NoError(err)
	s.NotNil(stored.ClockOut)
	s.NotNil(stored.HoursWorked)
}

func (s *PostgresStoreSuite) TestListOpenByStore() {
	ctx := context.Background()
	older := models.NewSession(s.tenantID, id.EmployeeID(uuid.New()), "Ben", "Lawrence",
		s.day.AddDays(-1), time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC), nil)
	s.Require().NoError(s.store.Create(ctx, older))
	s.Require().NoError(s.store.Create(ctx, s.newSession(id.EmployeeID(uuid.New()), 9)))

	open, err := s.store.ListOpenByStore(ctx, s.tenantID, "Lawrence", s.day)
	s.Require().NoError(err)
	s.Require().Len(open, 2)
	s.Equal(older.ID, open[0].ID)

	today, err := s.store.ListByStoreDate(ctx, s.tenantID, "Lawrence", s.day)
	s.Require().NoError(err)
	s.Len(today, 1)
}
