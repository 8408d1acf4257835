package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func signToken(t *testing.T, typ, role string, ttl time.Duration) string {
	t.Helper()
	claims := JWTClaims{
		UserID: 1,
		Email:  "ada@example.com",
		Role:   role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", JWTAuth(testSecret), func(c *gin.Context) {
		c.String(http.StatusOK, GetIdentity(c).Email)
	})
	r.GET("/admin", JWTAuth(testSecret), RequireRole("SUPERUSER"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"no token", "/me", "", http.StatusUnauthorized},
		{"garbage", "/me", "abc", http.StatusUnauthorized},
		{"expired", "/me", signToken(t, "access", "USER", -time.Minute), http.StatusUnauthorized},
		{"refresh token", "/me", signToken(t, "refresh", "USER", time.Hour), http.StatusUnauthorized},
		{"access token", "/me", signToken(t, "access", "USER", time.Hour), http.StatusOK},
		{"wrong role", "/admin", signToken(t, "access", "USER", time.Hour), http.StatusForbidden},
		{"right role", "/admin", signToken(t, "access", "superuser", time.Hour), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tc.path, tc.token)
			assert.Equal(t, tc.want, w.Code)
		})
	}

	w := do(r, http.MethodGet, "/me", signToken(t, "access", "USER", time.Hour))
	assert.Equal(t, "ada@example.com", w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := do(r, http.MethodGet, "/", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestErrorHandler_MapsKinds(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/denied", func(c *gin.Context) { _ = c.Error(apierror.AccessDenied()) })
	r.GET("/integrity", func(c *gin.Context) { _ = c.Error(apierror.Integrity("history row 9 missing")) })
	r.GET("/raw", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })

	w := do(r, http.MethodGet, "/denied", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"detail":"access denied"}`, w.Body.String())

	for _, path := range []string{"/integrity", "/raw"} {
		w = do(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"detail":"internal server error"}`, w.Body.String())
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(*gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestMemoryLimiter(t *testing.T) {
	clock := time.Now()
	l := newMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, retry, _ := l.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)

	ok, _, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "keys are independent")

	clock = clock.Add(2 * time.Minute)
	ok, _, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "window resets")
}

func TestRateLimit_Returns429(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(NewLimiter(nil, "test", 1, time.Minute)), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)
	w := do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}
