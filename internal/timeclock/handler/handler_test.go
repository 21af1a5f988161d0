package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"storeops/internal/face"
	"storeops/internal/storehours"
	"storeops/internal/timeclock/handler/mocks"
	"storeops/internal/timeclock/models"
	"storeops/internal/timeclock/service"
	id "storeops/pkg/domain"
	dErrors "storeops/pkg/domain-errors"
	"storeops/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	service  *mocks.MockService
	router   chi.Router
	tenantID id.TenantID
	session  *models.Session
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
	s.tenantID = id.TenantID(uuid.New())
	s.session = models.NewSession(s.tenantID, id.EmployeeID(uuid.New()), "Ana", "Lawrence",
		storehours.Date{Year: 2024, Month: time.June, Day: 3},
		time.Date(2024, 6, 3, 8, 45, 0, 0, time.UTC), nil)
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.WithTenant(req, s.tenantID))
}

func (s *HandlerSuite) TestUnauthenticated() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/timeclock/clock-in", map[string]string{})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

// =============================================================================
// Legacy clock endpoints
// =============================================================================

func (s *HandlerSuite) TestClockIn() {
	s.Run("created with entry id", func() {
		s.service.EXPECT().ClockIn(gomock.Any(), s.tenantID, s.session.EmployeeID, id.StoreID("Lawrence")).
			Return(&service.ClockInResult{Session: s.session}, nil)

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/timeclock/clock-in", map[string]string{
			"employee_id": s.session.EmployeeID.String(),
			"store_id":    "Lawrence",
		}))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "entry_id", s.session.ID.String())
	})

	s.Run("invalid employee id", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/timeclock/clock-in", map[string]string{
			"employee_id": "not-a-uuid",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("window denial is 403 with metadata", func() {
		policy, err := storehours.New("America/New_York")
		s.Require().NoError(err)
		decision := policy.CanClockAction(
			storehours.Hours{Opening: "09:00", Closing: "17:00", Timezone: "UTC"},
			time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC))
		s.service.EXPECT().ClockIn(gomock.Any(), s.tenantID, gomock.Any(), gomock.Any()).Return(nil, decision.Err())

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/timeclock/clock-in", map[string]string{
			"employee_id": s.session.EmployeeID.String(),
		}))

		testutil.AssertDenial(s.T(), rr, "OUTSIDE_CLOCK_WINDOW")
	})

	s.Run("already clocked in is 400", func() {
		s.service.EXPECT().ClockIn(gomock.Any(), s.tenantID, gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeAlreadyClockedIn, "Ana is already clocked in today."))

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/timeclock/clock-in", map[string]string{
			"employee_id": s.session.EmployeeID.String(),
		}))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "already_clocked_in")
	})
}

func (s *HandlerSuite) TestClockOut() {
	s.Run("manual close returns ok", func() {
		s.service.EXPECT().ClockOut(gomock.Any(), s.tenantID, s.session.ID).
			Return(&service.ClockOutResult{Session: s.session}, nil)

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/timeclock/clock-out", map[string]string{
			"entry_id": s.session.ID.String(),
		}))

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		body := testutil.UnmarshalResponse[ClockOutResponse](s.T(), rr)
		s.True(body.OK)
		s.False(body.AutoClockout)
	})

	s.Run("auto close reports the message", func() {
		closed := *s.session
		cmd, err := closed.Close(time.Date(2024, 6, 3, 17, 30, 0, 0, time.UTC), models.ClockOutAuto, nil)
		s.Require().NoError(err)
		closed.Apply(cmd)
		s.service.EXPECT().ClockOut(gomock.Any(), s.tenantID, s.session.ID).
			Return(&service.ClockOutResult{Session: &closed, Auto: true, Message: "Auto clocked out at 17:30 UTC"}, nil)

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/timeclock/clock-out", map[string]string{
			"entry_id": s.session.ID.String(),
		}))

		body := testutil.UnmarshalResponse[ClockOutResponse](s.T(), rr)
		s.True(body.AutoClockout)
		s.Equal("Auto clocked out at 17:30 UTC", body.Message)
	})

	s.Run("missing entry id", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/timeclock/clock-out", map[string]string{}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("malformed body", func() {
		rr := s.do(testutil.NewRequestWithBody(s.T(), http.MethodPost, "/timeclock/clock-out", "{"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

// =============================================================================
// Face clock endpoints
// =============================================================================

func (s *HandlerSuite) TestClockInFace() {
	probe := make([]float64, face.DefaultDescriptorLength)

	s.Run("missing descriptor", func() {
		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/timeclock/clock-in-face", map[string]any{
			"store_id": "Lawrence",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("unrecognized face is 404", func() {
		s.service.EXPECT().ClockInFace(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeFaceNotRecognized, "Face not recognized."))

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/timeclock/clock-in-face", map[string]any{
			"face_descriptor": probe,
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "face_not_recognized")
	})

	s.Run("recognized face is 201 with confidence", func() {
		confidence := 0.93
		opened := *s.session
		opened.ConfidenceIn = &confidence
		s.service.EXPECT().ClockInFace(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, req service.FaceClockRequest) (*service.ClockInResult, error) {
				s.Equal(s.tenantID, req.TenantID)
				s.Equal(id.StoreID("Lawrence"), req.StoreID)
				return &service.ClockInResult{Session: &opened}, nil
			})

		rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/timeclock/clock-in-face", map[string]any{
			"face_descriptor": probe,
			"store_id":        "Lawrence",
		}))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		body := testutil.UnmarshalResponse[FaceClockResponse](s.T(), rr)
		s.True(body.Success)
		s.Equal("Ana", body.EmployeeName)
		s.Require().NotNil(body.Confidence)
		s.Equal(0.93, *body.Confidence)
	})
}

func (s *HandlerSuite) TestClockOutFace() {
	probe := make([]float64, face.DefaultDescriptorLength)
	s.service.EXPECT().ClockOutFace(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeNotClockedIn, "Ana is not clocked in today. Please clock in first."))

	rr := s.do(testutil.NewJSONRequest(s.T(), http.MethodPost, "/timeclock/clock-out-face", map[string]any{
		"face_descriptor": probe,
	}))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "not_clocked_in")
}

// =============================================================================
// Listings
// =============================================================================

func (s *HandlerSuite) TestToday() {
	s.Run("requires store id", func() {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/timeclock/today", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("lists entries with status", func() {
		s.service.EXPECT().Today(gomock.Any(), s.tenantID, id.StoreID("Night Owl")).Return(&service.TodayResult{
			Date:     s.session.BusinessDate,
			StoreID:  "Night Owl",
			Sessions: []models.Session{*s.session},
		}, nil)

		rr := s.do(httptest.NewRequest(http.MethodGet, "/timeclock/today?store_id=Night+Owl", nil))

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		body := testutil.UnmarshalResponse[TodayResponse](s.T(), rr)
		s.Equal("2024-06-03", body.Date)
		s.Equal(1, body.TotalCount)
		s.Equal("clocked_in", body.Employees[0].Status)
		s.Nil(body.Employees[0].ClockOutType)
	})
}

func (s *HandlerSuite) TestHistory() {
	s.Run("store history passes days through", func() {
		s.service.EXPECT().StoreHistory(gomock.Any(), s.tenantID, id.StoreID("Lawrence"), 7).
			Return(&service.HistoryResult{StoreID: "Lawrence", Days: 7}, nil)

		rr := s.do(httptest.NewRequest(http.MethodGet, "/timeclock/history?store_id=Lawrence&days=7", nil))

		body := testutil.UnmarshalResponse[HistoryResponse](s.T(), rr)
		s.Equal(7, body.Days)
		s.NotNil(body.Entries)
		s.Zero(body.TotalCount)
	})

	s.Run("bad days parameter", func() {
		rr := s.do(httptest.NewRequest(http.MethodGet, "/timeclock/history?store_id=Lawrence&days=abc", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("employee history uses the path id", func() {
		employeeID := s.session.EmployeeID
		s.service.EXPECT().EmployeeHistory(gomock.Any(), s.tenantID, employeeID, 0).
			Return(&service.HistoryResult{EmployeeID: employeeID, Sessions: []models.Session{*s.session}, Days: 90}, nil)

		rr := s.do(httptest.NewRequest(http.MethodGet, "/timeclock/employees/"+employeeID.String()+"/history", nil))

		body := testutil.UnmarshalResponse[HistoryResponse](s.T(), rr)
		s.Equal(employeeID.String(), body.EmployeeID)
		s.Equal(90, body.Days)
		s.Equal(1, body.TotalCount)
	})
}
