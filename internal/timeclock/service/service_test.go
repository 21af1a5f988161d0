package service

//go:generate mockgen -source=../ports/ports.go -destination=mocks/mocks.go -package=mocks SessionStore,StoreDirectory,EmployeeDirectory,Identifier,AlertPublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"storeops/internal/alert"
	dirmodels "storeops/internal/directory/models"
	"storeops/internal/face"
	"storeops/internal/storehours"
	"storeops/internal/timeclock/models"
	"storeops/internal/timeclock/service/mocks"
	sessionstore "storeops/internal/timeclock/store"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
	"storeops/pkg/platform/sentinel"
	"storeops/pkg/requestcontext"
)

// =============================================================================
// Clock Service Test Suite
// =============================================================================
// Session lifecycle against a real in-memory session store; the directory,
// face identification and alert publishing are mocked.

type ClockServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	sessions   *sessionstore.InMemory
	stores     *mocks.MockStoreDirectory
	employees  *mocks.MockEmployeeDirectory
	identifier *mocks.MockIdentifier
	alerts     *mocks.MockAlertPublisher
	policy     *storehours.Policy
	service    *Service
	tenantID   id.TenantID
	store      *dirmodels.Store
	ana        *dirmodels.Employee
}

func TestClockServiceSuite(t *testing.T) {
	suite.Run(t, new(ClockServiceSuite))
}

func (s *ClockServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sessions = sessionstore.NewInMemory()
	s.stores = mocks.NewMockStoreDirectory(s.ctrl)
	s.employees = mocks.NewMockEmployeeDirectory(s.ctrl)
	s.identifier = mocks.NewMockIdentifier(s.ctrl)
	s.alerts = mocks.NewMockAlertPublisher(s.ctrl)

	policy, err := storehours.New("America/New_York")
	s.Require().NoError(err)
	s.policy = policy

	s.tenantID = id.TenantID(uuid.New())
	s.store = &dirmodels.Store{
		TenantID:        s.tenantID,
		ID:              "Lawrence",
		Hours:           storehours.Hours{Opening: "09:00", Closing: "17:00", Timezone: "UTC"},
		ManagerUsername: "maria",
	}
	s.ana = &dirmodels.Employee{
		ID:       id.EmployeeID(uuid.New()),
		TenantID: s.tenantID,
		StoreID:  "Lawrence",
		Name:     "Ana",
		Active:   true,
	}
	s.service = s.newService(policy)
}

func (s *ClockServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ClockServiceSuite) newService(policy *storehours.Policy) *Service {
	svc, err := New(s.sessions, s.stores, s.employees, policy,
		WithIdentifier(s.identifier),
		WithAlertPublisher(s.alerts),
	)
	s.Require().NoError(err)
	return svc
}

func (s *ClockServiceSuite) at(day, hh, mm int) context.Context {
	ctx := requestcontext.WithTenantID(context.Background(), s.tenantID)
	return requestcontext.WithTime(ctx, time.Date(2024, 6, day, hh, mm, 0, 0, time.UTC))
}

func (s *ClockServiceSuite) expectDirectory() {
	s.stores.EXPECT().GetStore(gomock.Any(), s.tenantID, id.StoreID("Lawrence")).Return(s.store, nil).AnyTimes()
	s.employees.EXPECT().GetEmployee(gomock.Any(), s.tenantID, s.ana.ID).Return(s.ana, nil).AnyTimes()
}

func (s *ClockServiceSuite) clockIn(ctx context.Context) *models.Session {
	res, err := s.service.ClockIn(ctx, s.tenantID, s.ana.ID, "")
	s.Require().NoError(err)
	return res.Session
}

func (s *ClockServiceSuite) TestNew() {
	policy := s.policy
	s.Run("nil session store returns error", func() {
		_, err := New(nil, s.stores, s.employees, policy)
		s.ErrorContains(err, "session store is required")
	})
	s.Run("nil store directory returns error", func() {
		_, err := New(s.sessions, nil, s.employees, policy)
		s.ErrorContains(err, "store directory is required")
	})
	s.Run("nil employee directory returns error", func() {
		_, err := New(s.sessions, s.stores, nil, policy)
		s.ErrorContains(err, "employee directory is required")
	})
	s.Run("nil policy returns error", func() {
		_, err := New(s.sessions, s.stores, s.employees, nil)
		s.ErrorContains(err, "policy is required")
	})
}

// =============================================================================
// StartSession
// =============================================================================

func (s *ClockServiceSuite) TestClockIn() {
	s.Run("opens a session inside the clock window", func() {
		s.SetupTest()
		s.expectDirectory()

		session := s.clockIn(s.at(3, 8, 45))

		s.Equal(models.StateOpen, session.State())
		s.Equal(id.StoreID("Lawrence"), session.StoreID)
		s.Equal("2024-06-03", session.BusinessDate.String())
		s.Nil(session.ConfidenceIn)
	})

	s.Run("window start is inclusive", func() {
		s.SetupTest()
		s.expectDirectory()
		s.clockIn(s.at(3, 8, 30))
	})

	s.Run("before the clock window is denied with metadata", func() {
		s.SetupTest()
		s.expectDirectory()

		_, err := s.service.ClockIn(s.at(3, 8, 29), s.tenantID, s.ana.ID, "")

		s.True(dErrors.HasCode(err, dErrors.CodeOutsideClockWindow))
		var denial *storehours.DenialError
		s.Require().ErrorAs(err, &denial)
		s.Equal("UTC", denial.Decision.Metadata.Timezone)
	})

	s.Run("second clock-in on the same business day is rejected", func() {
		s.SetupTest()
		s.expectDirectory()
		first := s.clockIn(s.at(3, 8, 45))

		_, err := s.service.ClockIn(s.at(3, 8, 50), s.tenantID, s.ana.ID, "")

		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyClockedIn))
		s.ErrorContains(err, "Ana is already clocked in today.")
		var open *OpenSessionError
		s.Require().ErrorAs(err, &open)
		s.Equal(first.ID, open.Session.ID)
	})

	s.Run("clock-in after a closed session opens a new one", func() {
		s.SetupTest()
		s.expectDirectory()
		first := s.clockIn(s.at(3, 8, 45))
		_, err := s.service.ClockOut(s.at(3, 8, 55), s.tenantID, first.ID)
		s.Require().NoError(err)

		second := s.clockIn(s.at(3, 8, 58))
		s.NotEqual(first.ID, second.ID)
	})

	s.Run("unknown employee", func() {
		s.SetupTest()
		s.employees.EXPECT().GetEmployee(gomock.Any(), s.tenantID, gomock.Any()).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.ClockIn(s.at(3, 9, 0), s.tenantID, id.EmployeeID(uuid.New()), "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unknown store fails open", func() {
		s.SetupTest()
		s.expectDirectory()
		s.stores.EXPECT().GetStore(gomock.Any(), s.tenantID, id.StoreID("Pop-up")).Return(nil, sentinel.ErrNotFound).AnyTimes()

		res, err := s.service.ClockIn(s.at(3, 3, 0), s.tenantID, s.ana.ID, "Pop-up")

		s.Require().NoError(err)
		s.Equal(id.StoreID("Pop-up"), res.Session.StoreID)
	})

	s.Run("directory failure is internal", func() {
		s.SetupTest()
		s.employees.EXPECT().GetEmployee(gomock.Any(), s.tenantID, s.ana.ID).Return(s.ana, nil)
		s.stores.EXPECT().GetStore(gomock.Any(), s.tenantID, gomock.Any()).Return(nil, errors.New("db down"))

		_, err := s.service.ClockIn(s.at(3, 9, 0), s.tenantID, s.ana.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ClockServiceSuite) TestLateClockInAlert() {
	s.Run("clock-in after opening alerts the manager", func() {
		s.SetupTest()
		s.expectDirectory()
		var published alert.Alert
		s.alerts.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, a alert.Alert) error {
				published = a
				return nil
			})

		s.clockIn(s.at(3, 9, 10))

		s.Equal(alert.TypeLateClockIn, published.Type)
		s.Equal("maria", published.ManagerUsername)
		s.Equal("Late Clock-In: Ana", published.Title)
		s.Contains(published.Message, "clocked in 10 minutes late at 09:10")
	})

	s.Run("publish failure does not fail the clock-in", func() {
		s.SetupTest()
		s.expectDirectory()
		s.alerts.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		session := s.clockIn(s.at(3, 9, 5))
		s.True(session.IsOpen())
	})

	s.Run("store without manager sends nothing", func() {
		s.SetupTest()
		s.store.ManagerUsername = ""
		s.expectDirectory()

		s.clockIn(s.at(3, 10, 0))
	})
}

// =============================================================================
// EndSession
// =============================================================================

func (s *ClockServiceSuite) TestClockOut() {
	s.Run("manual clock-out inside the window", func() {
		s.SetupTest()
		s.expectDirectory()
		session := s.clockIn(s.at(3, 8, 45))

		res, err := s.service.ClockOut(s.at(3, 17, 15), s.tenantID, session.ID)

		s.Require().NoError(err)
		s.False(res.Auto)
		s.Equal(models.StateClosedManual, res.Session.State())
		s.Equal(8.5, *res.Session.HoursWorked)
	})

	s.Run("window end is inclusive", func() {
		s.SetupTest()
		s.expectDirectory()
		session := s.clockIn(s.at(3, 8, 45))

		res, err := s.service.ClockOut(s.at(3, 17, 30), s.tenantID, session.ID)
		s.Require().NoError(err)
		s.False(res.Auto)
	})

	s.Run("late clock-out closes at the auto clock-out instant", func() {
		s.SetupTest()
		s.expectDirectory()
		session := s.clockIn(s.at(3, 8, 45))

		res, err := s.service.ClockOut(s.at(3, 18, 10), s.tenantID, session.ID)

		s.Require().NoError(err)
		s.True(res.Auto)
		s.Equal(models.StateClosedAuto, res.Session.State())
		s.Equal(time.Date(2024, 6, 3, 17, 30, 0, 0, time.UTC), *res.Session.ClockOut)
		s.Equal(8.75, *res.Session.HoursWorked)
		s.Equal("Auto clocked out at 17:30 UTC (30 minutes after closing time 17:00 UTC)", res.Message)
	})

	s.Run("next-morning clock-out also closes at the previous deadline", func() {
		s.SetupTest()
		s.expectDirectory()
		session := s.clockIn(s.at(3, 8, 45))

		res, err := s.service.ClockOut(s.at(4, 7, 0), s.tenantID, session.ID)

		s.Require().NoError(err)
		s.True(res.Auto)
		s.Equal(time.Date(2024, 6, 3, 17, 30, 0, 0, time.UTC), *res.Session.ClockOut)
	})

	s.Run("outside the window but before the auto instant is denied", func() {
		s.SetupTest()
		policy, err := storehours.New("America/New_York", storehours.WithAutoClockoutDelay(time.Hour))
		s.Require().NoError(err)
		s.service = s.newService(policy)
		s.expectDirectory()
		session := s.clockIn(s.at(3, 8, 45))

		_, err = s.service.ClockOut(s.at(3, 17, 45), s.tenantID, session.ID)

		s.True(dErrors.HasCode(err, dErrors.CodeOutsideClockWindow))
		stored, getErr := s.sessions.Get(context.Background(), s.tenantID, session.ID)
		s.Require().NoError(getErr)
		s.True(stored.IsOpen())
	})

	s.Run("closed entry is rejected", func() {
		s.SetupTest()
		s.expectDirectory()
		session := s.clockIn(s.at(3, 8, 45))
		_, err := s.service.ClockOut(s.at(3, 12, 0), s.tenantID, session.ID)
		s.Require().NoError(err)

		_, err = s.service.ClockOut(s.at(3, 12, 5), s.tenantID, session.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyClockedOut))
	})

	s.Run("unknown entry", func() {
		s.SetupTest()
		_, err := s.service.ClockOut(s.at(3, 12, 0), s.tenantID, id.NewSessionID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ClockServiceSuite) TestEndSessionAuto() {
	s.Run("closes once and is a no-op afterwards", func() {
		s.SetupTest()
		s.expectDirectory()
		session := s.clockIn(s.at(3, 8, 45))
		stale := *session
		deadline := time.Date(2024, 6, 3, 17, 30, 0, 0, time.UTC)

		applied, err := s.service.EndSessionAuto(context.Background(), session, deadline)
		s.Require().NoError(err)
		s.True(applied)
		s.Equal(deadline, *session.ClockOut)

		applied, err = s.service.EndSessionAuto(context.Background(), session, deadline)
		s.Require().NoError(err)
		s.False(applied)

		applied, err = s.service.EndSessionAuto(context.Background(), &stale, deadline.Add(time.Minute))
		s.Require().NoError(err)
		s.False(applied, "stale copy loses the conditional write")

		stored, err := s.sessions.Get(context.Background(), s.tenantID, session.ID)
		s.Require().NoError(err)
		s.Equal(deadline, *stored.ClockOut)
		s.Equal(models.ClockOutAuto, stored.ClockOutType)
	})
}

func (s *ClockServiceSuite) TestManualCloseLosesRace() {
	sessions := mocks.NewMockSessionStore(s.ctrl)
	svc, err := New(sessions, s.stores, s.employees, s.policy)
	s.Require().NoError(err)
	s.expectDirectory()

	open := models.NewSession(s.tenantID, s.ana.ID, "Ana", "Lawrence",
		storehours.Date{Year: 2024, Month: time.June, Day: 3},
		time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), nil)
	sessions.EXPECT().Get(gomock.Any(), s.tenantID, open.ID).Return(open, nil)
	sessions.EXPECT().CloseIfOpen(gomock.Any(), gomock.Any()).Return(false, nil)

	_, err = svc.ClockOut(s.at(3, 12, 0), s.tenantID, open.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyClockedOut))
}

// =============================================================================
// Face clock flows
// =============================================================================

func (s *ClockServiceSuite) probe() face.Descriptor {
	return make(face.Descriptor, face.DefaultDescriptorLength)
}

func (s *ClockServiceSuite) TestClockInFace() {
	s.Run("without an identifier face clock-in is unavailable", func() {
		s.SetupTest()
		svc, err := New(s.sessions, s.stores, s.employees, s.policy)
		s.Require().NoError(err)

		_, err = svc.ClockInFace(s.at(3, 9, 0), FaceClockRequest{TenantID: s.tenantID, Descriptor: s.probe()})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("unrecognized face is passed through", func() {
		s.SetupTest()
		s.identifier.EXPECT().Identify(gomock.Any(), s.tenantID, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeFaceNotRecognized, "Face not recognized."))

		_, err := s.service.ClockInFace(s.at(3, 9, 0), FaceClockRequest{TenantID: s.tenantID, Descriptor: s.probe()})
		s.True(dErrors.HasCode(err, dErrors.CodeFaceNotRecognized))
	})

	s.Run("recognized face opens a session with confidence", func() {
		s.SetupTest()
		s.expectDirectory()
		s.identifier.EXPECT().Identify(gomock.Any(), s.tenantID, gomock.Any()).
			Return(&face.Match{EmployeeID: s.ana.ID, EmployeeName: "Ana", Confidence: 0.92}, nil)

		res, err := s.service.ClockInFace(s.at(3, 8, 50), FaceClockRequest{
			TenantID:   s.tenantID,
			Descriptor: s.probe(),
			StoreID:    "Lawrence",
		})

		s.Require().NoError(err)
		s.Equal(0.92, *res.Session.ConfidenceIn)
		s.Equal("Ana", res.Match.EmployeeName)
	})

	s.Run("matched employee missing from directory", func() {
		s.SetupTest()
		ghost := id.EmployeeID(uuid.New())
		s.identifier.EXPECT().Identify(gomock.Any(), s.tenantID, gomock.Any()).
			Return(&face.Match{EmployeeID: ghost, EmployeeName: "Ghost", Confidence: 0.9}, nil)
		s.employees.EXPECT().GetEmployee(gomock.Any(), s.tenantID, ghost).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.ClockInFace(s.at(3, 9, 0), FaceClockRequest{TenantID: s.tenantID, Descriptor: s.probe()})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ClockServiceSuite) TestClockOutFace() {
	match := func() *face.Match {
		return &face.Match{EmployeeID: s.ana.ID, EmployeeName: "Ana", Confidence: 0.81}
	}

	s.Run("not clocked in", func() {
		s.SetupTest()
		s.expectDirectory()
		s.identifier.EXPECT().Identify(gomock.Any(), s.tenantID, gomock.Any()).Return(match(), nil)

		_, err := s.service.ClockOutFace(s.at(3, 12, 0), FaceClockRequest{TenantID: s.tenantID, Descriptor: s.probe()})

		s.True(dErrors.HasCode(err, dErrors.CodeNotClockedIn))
		s.ErrorContains(err, "Ana is not clocked in today. Please clock in first.")
	})

	s.Run("closes the open session with confidence", func() {
		s.SetupTest()
		s.expectDirectory()
		s.clockIn(s.at(3, 8, 45))
		s.identifier.EXPECT().Identify(gomock.Any(), s.tenantID, gomock.Any()).Return(match(), nil)

		res, err := s.service.ClockOutFace(s.at(3, 16, 45), FaceClockRequest{TenantID: s.tenantID, Descriptor: s.probe()})

		s.Require().NoError(err)
		s.Equal(models.StateClosedManual, res.Session.State())
		s.Equal(0.81, *res.Session.ConfidenceOut)
		s.Equal(8.0, *res.Session.HoursWorked)
	})
}

// =============================================================================
// Listings
// =============================================================================

func (s *ClockServiceSuite) TestListings() {
	s.Run("today lists the current business date", func() {
		s.SetupTest()
		s.expectDirectory()
		s.clockIn(s.at(3, 8, 45))

		today, err := s.service.Today(s.at(3, 12, 0), s.tenantID, "Lawrence")
		s.Require().NoError(err)
		s.Equal("2024-06-03", today.Date.String())
		s.Len(today.Sessions, 1)

		tomorrow, err := s.service.Today(s.at(4, 12, 0), s.tenantID, "Lawrence")
		s.Require().NoError(err)
		s.Empty(tomorrow.Sessions)
	})

	s.Run("store history defaults to thirty days", func() {
		s.SetupTest()
		s.expectDirectory()
		s.clockIn(s.at(3, 8, 45))

		history, err := s.service.StoreHistory(s.at(20, 12, 0), s.tenantID, "Lawrence", 0)
		s.Require().NoError(err)
		s.Equal(DefaultStoreHistoryDays, history.Days)
		s.Len(history.Sessions, 1)

		short, err := s.service.StoreHistory(s.at(20, 12, 0), s.tenantID, "Lawrence", 7)
		s.Require().NoError(err)
		s.Empty(short.Sessions)
	})

	s.Run("history rejects out-of-range days", func() {
		s.SetupTest()
		_, err := s.service.StoreHistory(s.at(3, 12, 0), s.tenantID, "Lawrence", -1)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("employee history requires a known employee", func() {
		s.SetupTest()
		s.employees.EXPECT().GetEmployee(gomock.Any(), s.tenantID, gomock.Any()).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.EmployeeHistory(s.at(3, 12, 0), s.tenantID, id.EmployeeID(uuid.New()), 0)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("employee history defaults to ninety days", func() {
		s.SetupTest()
		s.expectDirectory()
		s.clockIn(s.at(3, 8, 45))

		history, err := s.service.EmployeeHistory(s.at(20, 12, 0), s.tenantID, s.ana.ID, 0)
		s.Require().NoError(err)
		s.Equal(DefaultEmployeeHistoryDays, history.Days)
		s.Len(history.Sessions, 1)
	})
}
