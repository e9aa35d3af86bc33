package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"qr-restaurant-backend/controllers"
	"qr-restaurant-backend/middleware"
	"qr-restaurant-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Webhook deliveries are retried in bursts by the provider; they must never
// be answered 429, so the webhook route is registered outside the
// rate-limited group.
func TestWebhookBypassesRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	paymentService := services.NewPaymentService(nil, services.NewDemoProvider(), nil, "usd", nil, zap.NewNop())
	ctrl := Controllers{Payment: controllers.NewPaymentController(paymentService, zap.NewNop())}

	tokens := services.NewTokenService("access-secret", "refresh-secret")
	limiter := middleware.NewRateLimiter(0.0001, 1)

	router := gin.New()
	Register(router, ctrl, tokens, limiter)

	// exhaust the caller's rate budget on a limited route
	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/payments/create-intent", strings.NewReader("{}")))
	require.Equal(t, http.StatusUnauthorized, first.Code, "first request passes the limiter and fails auth")

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/payments/create-intent", strings.NewReader("{}")))
	require.Equal(t, http.StatusTooManyRequests, second.Code, "budget is spent")

	// webhook deliveries from the same client still get through
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", strings.NewReader("{}"))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "delivery %d", i)
	}
}
