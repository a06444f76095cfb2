package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitreport/internal/auth"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	return r
}

func TestAPIKeyMiddleware_Disabled(t *testing.T) {
	r := newEngine(APIKeyMiddleware(APIKeys{}))
	r.GET("/x", RequireServiceRole(APIKeys{}), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAPIKeyMiddleware_Roles(t *testing.T) {
	keys := APIKeys{Anon: "anon-key", ServiceRole: "service-key"}
	r := newEngine(APIKeyMiddleware(keys))
	r.GET("/read", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.PUT("/write", RequireServiceRole(keys), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		method, path, key string
		want              int
	}{
		{http.MethodGet, "/read", "", http.StatusUnauthorized},
		{http.MethodGet, "/read", "wrong", http.StatusUnauthorized},
		{http.MethodGet, "/read", "anon-key", http.StatusNoContent},
		{http.MethodPut, "/write", "anon-key", http.StatusForbidden},
		{http.MethodPut, "/write", "service-key", http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.key != "" {
			req.Header.Set(APIKeyHeader, tc.key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, "%s %s key=%q", tc.method, tc.path, tc.key)
	}
}

func TestSessionMiddleware(t *testing.T) {
	token, err := auth.EncodeToken(auth.TokenClaims{ID: 3, UserID: "kim01", Timestamp: 1})
	require.NoError(t, err)

	var got auth.Session
	var ok bool
	r := newEngine(SessionMiddleware())
	r.GET("/x", func(c *gin.Context) {
		got, ok = SessionFromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
	r.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, ok)
	assert.Equal(t, "kim01", got.UserID)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, ok)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCorrelationAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := newEngine(CorrelationIDMiddleware(), SlogLoggerMiddleware(logger))
	r.GET("/x", func(c *gin.Context) {
		LoggerFromContext(c).Info("inside")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(CorrelationIDHeader))
	assert.Contains(t, buf.String(), `"correlation_id":"abc-123"`)
	assert.Contains(t, buf.String(), `"msg":"request completed"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Header().Get(CorrelationIDHeader), 36)
}
