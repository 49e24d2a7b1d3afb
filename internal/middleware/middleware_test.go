package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/farellandr/eventhub/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for key, values := range header {
		req.Header[key] = values
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMemoryRateLimiter(t *testing.T) {
	limiter := NewMemoryRateLimiter(2, time.Minute)
	now := time.Now()
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		if got, _ := limiter.Allow(ctx, "1.2.3.4"); got != want {
			t.Errorf("request %d: Allow = %v, want %v", i+1, got, want)
		}
	}
	if got, _ := limiter.Allow(ctx, "5.6.7.8"); !got {
		t.Error("other client was limited")
	}

	now = now.Add(time.Minute)
	if got, _ := limiter.Allow(ctx, "1.2.3.4"); !got {
		t.Error("limit did not reset after the window")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(NewMemoryRateLimiter(1, time.Minute), quietLogger()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	if w := serve(r, http.MethodGet, "/ping", nil); w.Code != http.StatusOK {
		t.Errorf("first request status = %d, want %d", w.Code, http.StatusOK)
	}
	if w := serve(r, http.MethodGet, "/ping", nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}

func TestRedisRateLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		t.Skip("REDIS_URL not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	limiter := NewRedisRateLimiter(client, 2, time.Minute)
	limiter.prefix = "eventhub:test:" + uuid.NewString() + ":"
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		got, err := limiter.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow error = %v", err)
		}
		if got != want {
			t.Errorf("request %d: Allow = %v, want %v", i+1, got, want)
		}
	}
}

func TestJWTAuthMiddleware(t *testing.T) {
	auth := services.NewAuthService(nil, services.AuthConfig{Secret: "secret", TokenTTL: time.Hour})
	userID := uuid.New()
	token, err := auth.IssueToken(userID)
	if err != nil {
		t.Fatalf("IssueToken error = %v", err)
	}

	r := gin.New()
	r.GET("/private", JWTAuthMiddleware(auth), func(c *gin.Context) {
		c.String(http.StatusOK, c.MustGet(UserIDKey).(uuid.UUID).String())
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.header != "" {
				header.Set("Authorization", tt.header)
			}
			w := serve(r, http.MethodGet, "/private", header)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusOK && w.Body.String() != userID.String() {
				t.Errorf("user_id = %s, want %s", w.Body.String(), userID)
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	auth := services.NewAuthService(nil, services.AuthConfig{Secret: "secret", TokenTTL: time.Hour})

	r := gin.New()
	r.GET("/public", OptionalAuthMiddleware(auth), func(c *gin.Context) {
		credential := c.MustGet(CredentialKey).(services.Credential)
		c.String(http.StatusOK, credential.State.String())
	})

	w := serve(r, http.MethodGet, "/public", http.Header{"Authorization": {"Bearer expired.or.bad"}})
	if w.Code != http.StatusOK || w.Body.String() != "invalid" {
		t.Errorf("got %d %q, want 200 invalid", w.Code, w.Body.String())
	}
	w = serve(r, http.MethodGet, "/public", nil)
	if w.Code != http.StatusOK || w.Body.String() != "absent" {
		t.Errorf("got %d %q, want 200 absent", w.Code, w.Body.String())
	}
}

func TestDatabaseMiddlewareWithoutStore(t *testing.T) {
	r := gin.New()
	r.GET("/data", DatabaseMiddleware(nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, http.MethodGet, "/data", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/events", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodOptions, "/events", http.Header{"Origin": {"http://localhost:5173"}})
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q, want the request origin", got)
	}

	w = serve(r, http.MethodGet, "/events", http.Header{"Origin": {"http://evil.example"}})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin for unknown origin = %q, want empty", got)
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(quietLogger()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	if w := serve(r, http.MethodGet, "/boom", nil); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
