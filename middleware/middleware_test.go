package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialapi/token"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	tokens := token.NewService("secret", time.Hour)
	valid, err := tokens.Issue("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/private", Auth(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserIDKey))
	})

	tests := []struct {
		name   string
		token  string
		status int
		body   string
	}{
		{"missing", "", http.StatusUnauthorized, `{"msg":"No token. Authorization denied"}`},
		{"invalid", "abc.def.ghi", http.StatusUnauthorized, `{"msg":"Invalid token"}`},
		{"valid", valid, http.StatusOK, "64b7f0c2a1b2c3d4e5f60718"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.token != "" {
				headers[TokenHeader] = tt.token
			}
			w := performRequest(r, http.MethodGet, "/private", headers)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}

func TestCheckObjectID(t *testing.T) {
	r := gin.New()
	r.GET("/posts/:post_id/:comment_id", CheckObjectID("post_id", "comment_id"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := performRequest(r, http.MethodGet, "/posts/123/64b7f0c2a1b2c3d4e5f60718", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"msg":"Invalid ID"}`, w.Body.String())

	w = performRequest(r, http.MethodGet, "/posts/64b7f0c2a1b2c3d4e5f60718/zzzzf0c2a1b2c3d4e5f60718", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, http.MethodGet, "/posts/64b7f0c2a1b2c3d4e5f60718/64b7f0c2a1b2c3d4e5f60719", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewIPRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	allowed := func(ip string) bool {
		ok, _ := rl.Allow(ip)
		return ok
	}

	assert.True(t, allowed("1.1.1.1"))
	now = now.Add(10 * time.Second)
	assert.True(t, allowed("1.1.1.1"))

	ok, wait := rl.Allow("1.1.1.1")
	assert.False(t, ok)
	assert.Equal(t, 50*time.Second, wait)
	assert.True(t, allowed("2.2.2.2"))

	now = now.Add(51 * time.Second)
	assert.True(t, allowed("1.1.1.1"))

	now = now.Add(2 * time.Minute)
	rl.Prune()
	assert.Empty(t, rl.hits)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/auth", RateLimit(NewIPRateLimiter(1, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, performRequest(r, http.MethodPost, "/auth", nil).Code)

	w := performRequest(r, http.MethodPost, "/auth", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRequestLoggerAndRecovery(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(RequestLogger(log), Recovery(log))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := performRequest(r, http.MethodGet, "/boom", map[string]string{RequestIDHeader: "req-1"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server Error", w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), "panic while handling request")
}

func TestRequestLoggerGeneratesID(t *testing.T) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/ok", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
