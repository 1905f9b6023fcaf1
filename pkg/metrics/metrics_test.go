package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/book/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/book/:id", "200"))

	for _, id := range []string{"1", "2", "42"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/book/"+id, nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/book/:id", "200"))
	assert.Equal(t, float64(3), after-before)
}

func TestHandler_ServesPrometheusText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bookshop_http_requests_total")
}
