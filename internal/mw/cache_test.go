package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCacheServesSecondRequest(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)

	hits := 0
	r := gin.New()
	r.GET("/counts", func(c *gin.Context) { c.Set(RoleKey, RoleAdmin) }, Cache(store, time.Minute), func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/counts", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"hits":1}`, w.Body.String())
	}
	assert.Equal(t, 1, hits)
}

func TestCacheIsRoleScoped(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)

	r := gin.New()
	role := RoleAdmin
	r.GET("/counts", func(c *gin.Context) { c.Set(RoleKey, role) }, Cache(store, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": Role(c)})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/counts", nil)
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"role":"admin"}`, w.Body.String())

	// A different role must not be served the admin's cached body.
	role = RoleTechnician
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/counts", nil)
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"role":"technician"}`, w.Body.String())
}

func TestCacheSkipsErrorResponses(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)

	hits := 0
	r := gin.New()
	r.GET("/counts", Cache(store, time.Minute), func(c *gin.Context) {
		hits++
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/counts", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	}
	assert.Equal(t, 2, hits)
}
