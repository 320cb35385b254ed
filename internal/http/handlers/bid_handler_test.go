package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/avoronin/bidmarket-backend/internal/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuth подставляет идентификатор пользователя, как это делает
// AuthMiddleware после проверки токена.
func fakeAuth(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Next()
	}
}

func TestBidHandler_Submit_Unauthorized(t *testing.T) {
	router := gin.New()
	handler := NewBidHandler(nil, nil)
	router.POST("/projects/:id/bids", handler.Submit)

	req := httptest.NewRequest(http.MethodPost, "/projects/"+uuid.NewString()+"/bids",
		strings.NewReader(`{"amount": 100, "delivery_days": 5, "proposal": "готов взяться за работу"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestBidHandler_ListMine_Unauthorized(t *testing.T) {
	router := gin.New()
	handler := NewBidHandler(nil, nil)
	router.GET("/bids/my", handler.ListMine)

	req := httptest.NewRequest(http.MethodGet, "/bids/my", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBidHandler_Accept_InvalidProjectID(t *testing.T) {
	router := gin.New()
	handler := NewBidHandler(nil, nil)
	router.PUT("/projects/:id/bids/:bidId/accept",
		fakeAuth(uuid.New()), middleware.UUIDValidator("id", "bidId"), handler.Accept)

	req := httptest.NewRequest(http.MethodPut, "/projects/not-a-uuid/bids/"+uuid.NewString()+"/accept", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UUID")
}

func TestBidHandler_Accept_InvalidBidID(t *testing.T) {
	router := gin.New()
	handler := NewBidHandler(nil, nil)
	router.PUT("/projects/:id/bids/:bidId/accept",
		fakeAuth(uuid.New()), middleware.UUIDValidator("id", "bidId"), handler.Accept)

	req := httptest.NewRequest(http.MethodPut, "/projects/"+uuid.NewString()+"/bids/42/accept", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBidHandler_Get_InvalidID(t *testing.T) {
	router := gin.New()
	handler := NewBidHandler(nil, nil)
	router.GET("/bids/:id", fakeAuth(uuid.New()), handler.Get)

	req := httptest.NewRequest(http.MethodGet, "/bids/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBidHandler_Withdraw_Unauthorized(t *testing.T) {
	router := gin.New()
	handler := NewBidHandler(nil, nil)
	router.PUT("/projects/:id/bids/withdraw", handler.Withdraw)

	req := httptest.NewRequest(http.MethodPut, "/projects/"+uuid.NewString()+"/bids/withdraw", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
