package wallet

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"warnetbook/internal/auth"
)

func setupWalletRouter(repo Repository, caller *auth.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(repo, nil, nil)
	h := NewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if caller != nil {
			auth.SetIdentity(c, *caller)
		}
		c.Next()
	})
	r.GET("/wallet", h.GetBalance)
	r.POST("/wallet/topups", h.RequestTopup)
	r.POST("/operator/topups/:txID/approve", h.Approve)
	r.POST("/operator/topups/:txID/reject", h.Reject)
	r.GET("/wallet/transactions", h.ListTransactions)
	return r
}

func TestHandler_GetBalance(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetBalance", mock.Anything, 7).Return(int64(70000), nil)

	w := httptest.NewRecorder()
	setupWalletRouter(repo, &patron).ServeHTTP(w, httptest.NewRequest("GET", "/wallet", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"money_balance":70000}`, w.Body.String())
}

func TestHandler_RequiresIdentity(t *testing.T) {
	w := httptest.NewRecorder()
	setupWalletRouter(new(MockRepository), nil).ServeHTTP(w, httptest.NewRequest("GET", "/wallet", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_RequestTopup(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing proof", `{"amount":50000}`, http.StatusBadRequest},
		{"negative amount", `{"amount":-1,"proof":"receipt.jpg"}`, http.StatusBadRequest},
		{"malformed", `{"amount":`, http.StatusBadRequest},
		{"valid", `{"amount":50000,"proof":"receipt.jpg"}`, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("InsertTransaction", mock.Anything, mock.AnythingOfType("*wallet.Transaction")).Return(nil)

			req := httptest.NewRequest("POST", "/wallet/topups", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			setupWalletRouter(repo, &patron).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusCreated {
				assert.Contains(t, w.Body.String(), `"status":"pending"`)
			}
		})
	}
}

func TestHandler_ApproveStatuses(t *testing.T) {
	tests := []struct {
		name       string
		caller     auth.Identity
		err        error
		wantStatus int
	}{
		{"patron forbidden", patron, nil, http.StatusForbidden},
		{"already processed", operator, ErrAlreadyProcessed, http.StatusConflict},
		{"unknown transaction", operator, ErrTransactionNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("CompleteTopup", mock.Anything, 10, mock.Anything, mock.Anything).Return(nil, tt.err)

			w := httptest.NewRecorder()
			setupWalletRouter(repo, &tt.caller).ServeHTTP(w, httptest.NewRequest("POST", "/operator/topups/10/approve", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandler_RejectRequiresNote(t *testing.T) {
	req := httptest.NewRequest("POST", "/operator/topups/10/reject", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	setupWalletRouter(new(MockRepository), &operator).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListTransactionsRejectsUnknownKind(t *testing.T) {
	w := httptest.NewRecorder()
	setupWalletRouter(new(MockRepository), &patron).
		ServeHTTP(w, httptest.NewRequest("GET", "/wallet/transactions?kind=bonus", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
