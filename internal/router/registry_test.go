package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingModule struct{}

func (pingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mw")) })
}

func TestRegistry_MountsModulesUnderAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry(gin.New())
	reg.Use(func(c *gin.Context) { c.Set("mw", "seen"); c.Next() })
	reg.Add(pingModule{})
	reg.RegisterAll()

	w := httptest.NewRecorder()
	reg.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "seen", w.Body.String())

	w = httptest.NewRecorder()
	reg.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")

	w = httptest.NewRecorder()
	reg.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
