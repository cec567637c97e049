package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMissingIndexFallsBackToStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := NewFrontendFS("does-not-exist", fstest.MapFS{})
	r := gin.New()
	f.SetupRouter(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anything", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Frontend index.html not found")

	assert.False(t, f.Info().IndexExists)
	assert.Equal(t, "does-not-exist", f.Info().FrontendDist)
}

func TestNonGetUnknownRouteIs404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := NewFrontendFS("dist", fstest.MapFS{"index.html": {Data: []byte("x")}})
	r := gin.New()
	f.SetupRouter(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
