package membership

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"warnetbook/internal/apperr"
	"warnetbook/internal/auth"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Join(ctx context.Context, caller auth.Identity, venueID int) (*Membership, error) {
	args := m.Called(ctx, caller, venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *MockService) ListMine(ctx context.Context, caller auth.Identity) ([]Membership, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).([]Membership), args.Error(1)
}

func (m *MockService) IsMember(ctx context.Context, caller auth.Identity, venueID int) (bool, error) {
	args := m.Called(ctx, caller, venueID)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) ListByVenue(ctx context.Context, caller auth.Identity, venueID, limit, offset int) ([]VenueMember, error) {
	args := m.Called(ctx, caller, venueID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]VenueMember), args.Error(1)
}

func setupMembershipRouter(svc Service, caller *auth.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if caller != nil {
			auth.SetIdentity(c, *caller)
		}
		c.Next()
	})

	h := NewHandler(svc)
	r.POST("/venues/:venueID/membership", h.Join)
	r.GET("/memberships", h.ListMine)
	r.GET("/operator/venues/:venueID/members", h.ListByVenue)
	return r
}

func TestHandler_Join(t *testing.T) {
	patron := auth.Identity{UserID: 4, Role: auth.RolePatron}

	tests := []struct {
		name   string
		caller *auth.Identity
		path   string
		setup  func(*MockService)
		status int
	}{
		{
			name:   "created",
			caller: &patron,
			path:   "/venues/2/membership",
			setup: func(s *MockService) {
				s.On("Join", mock.Anything, patron, 2).Return(&Membership{ID: 1, UserID: 4, VenueID: 2}, nil)
			},
			status: http.StatusCreated,
		},
		{
			name:   "already a member",
			caller: &patron,
			path:   "/venues/2/membership",
			setup: func(s *MockService) {
				s.On("Join", mock.Anything, patron, 2).Return(nil, apperr.Conflict("already a member of this venue"))
			},
			status: http.StatusConflict,
		},
		{
			name:   "unknown venue",
			caller: &patron,
			path:   "/venues/99/membership",
			setup: func(s *MockService) {
				s.On("Join", mock.Anything, patron, 99).Return(nil, apperr.NotFound("venue not found"))
			},
			status: http.StatusNotFound,
		},
		{
			name:   "bad id",
			caller: &patron,
			path:   "/venues/abc/membership",
			status: http.StatusBadRequest,
		},
		{
			name:   "no identity",
			path:   "/venues/2/membership",
			status: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.setup != nil {
				tt.setup(svc)
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			setupMembershipRouter(svc, tt.caller).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_ListMine(t *testing.T) {
	member := auth.Identity{UserID: 4, Role: auth.RoleMember}
	svc := new(MockService)
	svc.On("ListMine", mock.Anything, member).Return([]Membership{
		{ID: 1, UserID: 4, VenueID: 2, VenueName: "Warnet Sinar"},
	}, nil)

	w := httptest.NewRecorder()
	setupMembershipRouter(svc, &member).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/memberships", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []Membership
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Warnet Sinar", got[0].VenueName)
}

func TestHandler_ListByVenue(t *testing.T) {
	operator := auth.Identity{UserID: 1, Role: auth.RoleOperator}
	patron := auth.Identity{UserID: 4, Role: auth.RolePatron}
	left := 75.0

	tests := []struct {
		name   string
		caller auth.Identity
		path   string
		setup  func(*MockService)
		status int
	}{
		{
			name:   "roster with paging",
			caller: operator,
			path:   "/operator/venues/2/members?limit=10&offset=20",
			setup: func(s *MockService) {
				s.On("ListByVenue", mock.Anything, operator, 2, 10, 20).Return([]VenueMember{
					{UserID: 4, FullName: "Sari", MoneyBalance: 50000, RemainingMinutesNow: &left},
				}, nil)
			},
			status: http.StatusOK,
		},
		{
			name:   "not an operator",
			caller: patron,
			path:   "/operator/venues/2/members",
			setup: func(s *MockService) {
				s.On("ListByVenue", mock.Anything, patron, 2, 20, 0).Return(nil, apperr.Forbidden("only operators can list venue members"))
			},
			status: http.StatusForbidden,
		},
		{
			name:   "unknown venue",
			caller: operator,
			path:   "/operator/venues/99/members",
			setup: func(s *MockService) {
				s.On("ListByVenue", mock.Anything, operator, 99, 20, 0).Return(nil, ErrVenueNotFound)
			},
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setup(svc)

			w := httptest.NewRecorder()
			setupMembershipRouter(svc, &tt.caller).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"remaining_minutes_now":75`)
				assert.Contains(t, w.Body.String(), `"money_balance":50000`)
			}
			svc.AssertExpectations(t)
		})
	}
}
