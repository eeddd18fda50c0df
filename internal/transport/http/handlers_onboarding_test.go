package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"kayit/internal/backend"
	"kayit/internal/location"
	locationMocks "kayit/internal/location/mocks"
	"kayit/internal/onboarding"
	ratelimit "kayit/internal/ratelimit/middleware"
	"kayit/internal/ratelimit/models"
	"kayit/internal/ratelimit/store/bucket"
	"kayit/internal/session"
	sessionMocks "kayit/internal/session/mocks"
	"kayit/internal/transport/http/mocks"
	"kayit/internal/ttlcache"
	"kayit/pkg/testutil"
)

//go:generate mockgen -source=handlers_onboarding.go -destination=mocks/onboarding-mocks.go -package=mocks Submitter

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type OnboardingHandlerSuite struct {
	suite.Suite
	clock     *testClock
	validator *sessionMocks.MockTokenValidator
	fetcher   *locationMocks.MockFetcher
	submitter *mocks.MockSubmitter
	router    http.Handler
}

func TestOnboardingHandlerSuite(t *testing.T) {
	suite.Run(t, new(OnboardingHandlerSuite))
}

func (s *OnboardingHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.clock = &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s.validator = sessionMocks.NewMockTokenValidator(ctrl)
	s.fetcher = locationMocks.NewMockFetcher(ctrl)
	s.submitter = mocks.NewMockSubmitter(ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := ttlcache.NewMemoryStore(ttlcache.WithClock(s.clock.Now))
	sessions := session.NewManager(s.validator, store, session.WithWindow(10*time.Minute), session.WithClock(s.clock.Now))
	resolver := location.NewResolver(s.fetcher, store)
	handler := NewOnboardingHandler(sessions, resolver, s.submitter, logger, time.Second, time.Millisecond)
	s.router = NewRouter(logger, handler)
}

func (s *OnboardingHandlerSuite) expectValidToken(token string) {
	s.validator.EXPECT().ValidateToken(gomock.Any(), token).Return(backend.TokenValidation{Success: true}, nil)
}

func hierarchy() backend.HierarchyResponse {
	return backend.HierarchyResponse{States: []backend.StateWire{
		{StateCode: "34", StateDescription: "Istanbul", Cities: []backend.CityWire{
			{CityCode: "34-01", CityDescription: "Kadikoy", Districts: []backend.DistrictWire{{DistrictCode: "34-01-1", DistrictDescription: "Moda"}}},
		}},
		{StateCode: "06", StateDescription: "Ankara"},
	}}
}

func (s *OnboardingHandlerSuite) TestGetSession() {
	s.Run("valid token", func() {
		s.expectValidToken("abc")
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/onboarding/abc/session", nil))

		s.Equal(http.StatusOK, rr.Code)
		st := testutil.UnmarshalResponse[session.State](s.T(), rr)
		s.Equal(session.StatusValid, st.Status)
		s.Equal(600, st.RemainingSeconds)
	})

	s.Run("rejected token", func() {
		s.validator.EXPECT().ValidateToken(gomock.Any(), "nope").Return(backend.TokenValidation{Success: false, Message: "unknown token"}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/onboarding/nope/session", nil))

		s.Equal(http.StatusOK, rr.Code)
		st := testutil.UnmarshalResponse[session.State](s.T(), rr)
		s.Equal(session.StatusInvalid, st.Status)
		s.Zero(st.RemainingSeconds)
		s.Equal("unknown token", st.Message)
	})
}

func (s *OnboardingHandlerSuite) TestGetLocations() {
	s.Run("slices the hierarchy for the selection", func() {
		s.expectValidToken("abc")
		s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "abc", "TR", "TR").Return(hierarchy(), nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet,
			"/onboarding/abc/locations?countryCode=tr&stateCode=34&cityCode=34-01", nil))

		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[locationsResponse](s.T(), rr)
		s.Equal(location.StatusAvailable, resp.Status)
		s.Len(resp.States, 2)
		s.Len(resp.Cities, 1)
		s.Equal("Moda", resp.Districts[0].Name)
		s.Equal(location.Selection{Country: "TR", State: "34", City: "34-01"}, resp.Selection)
	})

	s.Run("city without a state is dropped", func() {
		s.expectValidToken("ghi")
		s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "ghi", "TR", "TR").Return(hierarchy(), nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet,
			"/onboarding/ghi/locations?countryCode=TR&cityCode=34-01", nil))

		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[locationsResponse](s.T(), rr)
		s.Equal(location.Selection{Country: "TR"}, resp.Selection)
		s.Len(resp.States, 2)
		s.Empty(resp.Cities)
		s.Empty(resp.Districts)
	})

	s.Run("unavailable hierarchy is 503", func() {
		s.expectValidToken("def")
		s.fetcher.EXPECT().LocationHierarchy(gomock.Any(), "def", "EN", "TR").
			Return(backend.HierarchyResponse{}, errors.New("connection refused")).Times(2)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet,
			"/onboarding/def/locations?countryCode=TR&languageCode=en", nil))

		s.Equal(http.StatusServiceUnavailable, rr.Code)
		resp := testutil.UnmarshalResponse[locationsResponse](s.T(), rr)
		s.Equal(location.StatusUnavailable, resp.Status)
		s.NotNil(resp.States)
	})

	s.Run("country is required", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/onboarding/abc/locations", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *OnboardingHandlerSuite) TestGetLocationsRequiresLiveSession() {
	s.expectValidToken("abc")
	testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/onboarding/abc/session", nil))
	s.clock.Advance(11 * time.Minute)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/onboarding/abc/locations?countryCode=TR", nil))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "session_expired")
}

func (s *OnboardingHandlerSuite) TestRateLimitPerClientIP() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := ttlcache.NewMemoryStore(ttlcache.WithClock(s.clock.Now))
	sessions := session.NewManager(s.validator, store, session.WithWindow(10*time.Minute), session.WithClock(s.clock.Now))
	buckets := bucket.NewInMemoryBucketStore(bucket.WithClock(s.clock.Now))
	perIP := ratelimit.New(buckets, logger).RateLimit(models.Policy{Class: "onboarding", Limit: 2, Window: time.Minute})
	handler := NewOnboardingHandler(sessions, nil, s.submitter, logger, time.Second, time.Millisecond, WithRateLimit(perIP))
	router := NewRouter(logger, handler)

	s.validator.EXPECT().ValidateToken(gomock.Any(), "abc").Return(backend.TokenValidation{Success: true}, nil).AnyTimes()
	get := func(remoteAddr string) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/onboarding/abc/session", nil)
		req.RemoteAddr = remoteAddr
		return testutil.DoRequest(router, req)
	}

	s.Equal(http.StatusOK, get("198.51.100.7:5000").Code)
	s.Equal(http.StatusOK, get("198.51.100.7:5001").Code)

	rr := get("198.51.100.7:5002")
	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "rate_limit_exceeded")
	s.Equal("60", rr.Header().Get("Retry-After"))

	s.Equal(http.StatusOK, get("203.0.113.9:4000").Code, "another client keeps its own budget")

	s.clock.Advance(time.Minute)
	s.Equal(http.StatusOK, get("198.51.100.7:5003").Code)
}

func (s *OnboardingHandlerSuite) TestSubmit() {
	draft := onboarding.Draft{
		Customer:       onboarding.Customer{CustomerName: "Ali Veli", IsIndividual: true, IdentityNumber: "12345678901"},
		Communications: []onboarding.Communication{{Type: "EMAIL", Value: "a@b.com"}},
	}

	tests := []struct {
		name     string
		result   onboarding.Result
		expected int
	}{
		{"completed", onboarding.Result{Status: onboarding.StatusCompleted, CustomerCode: "C1", Message: "customer created"}, http.StatusCreated},
		{"partial", onboarding.Result{Status: onboarding.StatusPartial, CustomerCode: "C1"}, http.StatusMultiStatus},
		{"expired", onboarding.Result{Status: onboarding.StatusFailed, Code: "session_expired"}, http.StatusConflict},
		{"invalid draft", onboarding.Result{Status: onboarding.StatusFailed, Code: "validation_error"}, http.StatusUnprocessableEntity},
		{"uncoded failure", onboarding.Result{Status: onboarding.StatusFailed}, http.StatusBadRequest},
	}
	s.expectValidToken("abc")
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, sess onboarding.SessionView, got onboarding.Draft) onboarding.Result {
					s.Equal("abc", sess.Token())
					s.Equal("Ali Veli", got.CustomerName)
					s.Len(got.Communications, 1)
					return tt.result
				})

			rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/onboarding/abc/submit", draft))

			s.Equal(tt.expected, rr.Code)
			res := testutil.UnmarshalResponse[onboarding.Result](s.T(), rr)
			s.Equal(tt.result.Status, res.Status)
		})
	}
}

func (s *OnboardingHandlerSuite) TestSubmitRejectsBadBodies() {
	s.Run("malformed json", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/onboarding/abc/submit", nil)
		req.Body = io.NopCloser(strings.NewReader("{"))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("wrong content type", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/onboarding/abc/submit", map[string]any{})
		req.Header.Set("Content-Type", "text/plain")
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusUnsupportedMediaType, rr.Code)
	})
}

func TestCountdownStreamsUntilExpiry(t *testing.T) {
	ctrl := gomock.NewController(t)
	validator := sessionMocks.NewMockTokenValidator(ctrl)
	validator.EXPECT().ValidateToken(gomock.Any(), "abc").Return(backend.TokenValidation{Success: true}, nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManager(validator, ttlcache.NewMemoryStore(), session.WithWindow(30*time.Millisecond))
	handler := NewOnboardingHandler(sessions, nil, nil, logger, time.Second, 5*time.Millisecond)
	router := NewRouter(logger, handler)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/onboarding/abc/session/countdown", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	events := testutil.ParseEvents(t, rr.Body.String())
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, "state", events[0].Name)
	assert.Contains(t, events[0].Data, `"status":"valid"`)
	assert.Contains(t, events[len(events)-1].Data, `"status":"expired"`)
}
