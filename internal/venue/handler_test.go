package venue

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupVenueRouter(repo *MockRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewService(repo))

	r := gin.New()
	r.GET("/venues/:venueID", h.Get)
	r.POST("/operator/venues", h.Create)
	return r
}

func TestHandler_Get(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, 3).Return(&Venue{
		ID:                  3,
		Name:                "Warnet Bowar",
		RegularPricePerHour: decimal.NewFromInt(5000),
		MemberPricePerHour:  decimal.NewFromInt(4000),
	}, nil)
	repo.On("GetByID", mock.Anything, 4).Return(nil, ErrVenueNotFound)

	r := setupVenueRouter(repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/venues/3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"member_price_per_hour":"4000"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/venues/4", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/venues/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreateRejectsMissingFields(t *testing.T) {
	r := setupVenueRouter(new(MockRepository))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/operator/venues", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Name is required")
}
