package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "testsecret"

func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(testSecret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := buildTestRouter()

	valid, err := GenerateToken(testSecret, "user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	forged, err := GenerateToken("othersecret", "user-1", "user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "x@example.com"}).
		SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized},
		{"no user id", "Bearer " + noSubject, http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			if resp.Code != tt.want {
				t.Fatalf("status = %d, want %d", resp.Code, tt.want)
			}
			if tt.want == http.StatusOK && resp.Body.String() != "user-1" {
				t.Errorf("user id = %q, want user-1", resp.Body.String())
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	limiter := NewRateLimiter(60, 2)
	r.Use(RateLimit(limiter))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}
}

func TestCleanupLimitersEvictsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	now := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	idle := limiter.GetLimiter("10.0.0.1")
	idle.Allow()
	now = now.Add(20 * time.Minute)
	busy := limiter.GetLimiter("10.0.0.2")
	busy.Allow()

	// neither client has passed the idle timeout yet
	if removed := limiter.CleanupLimiters(); removed != 0 {
		t.Fatalf("removed %d limiters, want 0", removed)
	}

	now = now.Add(15 * time.Minute)
	if removed := limiter.CleanupLimiters(); removed != 1 {
		t.Fatalf("removed %d limiters, want 1", removed)
	}
	if limiter.GetLimiter("10.0.0.2") != busy {
		t.Errorf("recently used limiter was evicted")
	}
	if limiter.GetLimiter("10.0.0.1") == idle {
		t.Errorf("idle limiter was kept")
	}

	limiter.StartCleanup(time.Hour)
	limiter.Stop()
	limiter.Stop()
}
