package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGinMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/users/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, "/api/users/:id", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users/2", nil))
	after := testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, "/api/users/:id", "200"))

	assert.Equal(t, before+2, after)
	assert.Zero(t, testutil.ToFloat64(requestsInFlight))
}

func TestDocumentStatusChanged(t *testing.T) {
	Register()
	before := testutil.ToFloat64(documentStatusChanges.WithLabelValues("approved"))
	DocumentStatusChanged("approved")
	assert.Equal(t, before+1, testutil.ToFloat64(documentStatusChanges.WithLabelValues("approved")))
}
