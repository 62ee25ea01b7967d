package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-library-api/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func authRouter(rdb *redis.Client, jwt *helpers.JWTManager) *gin.Engine {
	r := gin.New()
	r.GET("/me", Auth(rdb, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})
	return r
}

func TestAuth(t *testing.T) {
	rdb, mr := newRedis(t)
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	token, _, err := jwt.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)
	mr.HSet(helpers.SessionKey("u1"), "sid", "s1", "login", "alice")
	r := authRouter(rdb, jwt)

	cases := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "access_token", Value: token}) }, http.StatusOK},
		{"missing", func(*http.Request) {}, http.StatusUnauthorized},
		{"wrong scheme", func(req *http.Request) { req.Header.Set("Authorization", "Basic "+token) }, http.StatusUnauthorized},
		{"garbage", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			}
		})
	}
}

func TestAuth_StaleSession(t *testing.T) {
	rdb, mr := newRedis(t)
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	token, _, err := jwt.GenerateAccessToken("u1", "old-sid")
	require.NoError(t, err)
	mr.HSet(helpers.SessionKey("u1"), "sid", "new-sid")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authRouter(rdb, jwt).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "session not found")
}

func TestAuth_WithoutRedisTrustsToken(t *testing.T) {
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	token, _, err := jwt.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authRouter(nil, jwt).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	rdb, _ := newRedis(t)
	r := gin.New()
	r.Use(RealIP(false))
	r.GET("/books", RateLimit(rdb, 2, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		r.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/books", nil))
		if i < 2 {
			assert.Equal(t, http.StatusOK, last.Code)
		}
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
}

func TestRateLimit_AllowBypasses(t *testing.T) {
	rdb, _ := newRedis(t)
	r := gin.New()
	r.Use(RealIP(false))
	r.GET("/x", RateLimit(rdb, 1, time.Minute, KeyByIPAndPath(), AllowPrivateIP()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.1.2.3:4000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRealIP(t *testing.T) {
	var seen string
	handler := func(c *gin.Context) { seen = c.GetString("real_ip") }

	trusted := gin.New()
	trusted.GET("/", RealIP(true), handler)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	trusted.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.9", seen)

	untrusted := gin.New()
	untrusted.GET("/", RealIP(false), handler)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:1234"
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	untrusted.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "198.51.100.7", seen)
}

func TestOnlyAllowed(t *testing.T) {
	r := gin.New()
	r.Use(RealIP(false))
	r.GET("/debug", OnlyAllowed(AllowPrivateIP("203.0.113.0/24")), func(c *gin.Context) { c.Status(http.StatusOK) })

	for addr, want := range map[string]int{
		"127.0.0.1:1":    http.StatusOK,
		"203.0.113.5:1":  http.StatusOK,
		"198.51.100.7:1": http.StatusNotFound,
	} {
		req := httptest.NewRequest(http.MethodGet, "/debug", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, addr)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Body.String())
}
