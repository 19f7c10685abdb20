package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/careportal/careportal/internal/platform/auth"
)

func limitedCall(t *testing.T, mw echo.MiddlewareFunc, userID string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: userID, Role: auth.RoleDoctor})))
	}

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code
}

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 3})
	for i := 0; i < 3; i++ {
		if code := limitedCall(t, mw, "u1"); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
}

func TestRateLimit_BlocksOverBurst(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.0001, BurstSize: 1})
	if code := limitedCall(t, mw, "u1"); code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", code)
	}
	if code := limitedCall(t, mw, "u1"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", code)
	}
}

func TestRateLimit_PerUserKeys(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.0001, BurstSize: 1})
	if code := limitedCall(t, mw, "u1"); code != http.StatusOK {
		t.Fatalf("u1 first request should pass, got %d", code)
	}
	if code := limitedCall(t, mw, "u2"); code != http.StatusOK {
		t.Errorf("u2 should have its own bucket, got %d", code)
	}
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 100 || cfg.BurstSize != 200 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
