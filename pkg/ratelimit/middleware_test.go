package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aerolink/internal/shared/config"
	"aerolink/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRateLimitType(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   RateLimitType
	}{
		{"health", http.MethodGet, "/health", RateLimitTypeHealth},
		{"signin", http.MethodPost, "/api/v1/auth/signin", RateLimitTypeAuth},
		{"search", http.MethodPost, "/api/v1/flight/search", RateLimitTypeSearch},
		{"airports", http.MethodGet, "/api/v1/flight/get-all-airports", RateLimitTypePublic},
		{"pay", http.MethodPost, "/api/v1/booking/sessions/:id/payment", RateLimitTypePayment},
		{"payment summary", http.MethodGet, "/api/v1/booking/sessions/:id/payment", RateLimitTypeBooking},
		{"toggle", http.MethodPost, "/api/v1/booking/sessions/:id/seats/toggle", RateLimitTypeBooking},
		{"history", http.MethodGet, "/api/v1/users/bookings", RateLimitTypeBooking},
		{"unknown", http.MethodGet, "/swagger/*any", RateLimitTypeDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getRateLimitType(tt.method, tt.path))
		})
	}
}

func TestClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded first hop", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:80", "10.0.0.1"},
		{"garbage forwarded falls through", map[string]string{"X-Forwarded-For": "nope", "X-Real-IP": "10.0.0.9"}, "1.1.1.1:80", "10.0.0.9"},
		{"remote addr", nil, "192.168.1.5:5555", "192.168.1.5"},
		{"remote addr without port", nil, "192.168.1.5", "192.168.1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(c))
		})
	}
}

func TestIsAllowed_DisabledSkipsRedis(t *testing.T) {
	rl := NewRateLimiter(nil, config.RateLimitConfig{
		Enabled:        false,
		WindowDuration: time.Minute,
		AuthRequests:   10,
	})

	res, err := rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeAuth)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 10, res.Limit)
	assert.Equal(t, 10, res.Remaining)
}

func TestMiddleware_WhitelistedIPPassesWithHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(nil, config.RateLimitConfig{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 3,
		WhitelistedIPs:  []string{"192.0.2.1"},
	})

	r := gin.New()
	r.Use(Middleware(rl, logger.Discard()))
	r.GET("/anything", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
}
