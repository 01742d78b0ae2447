package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestKeyedLimiter_IndependentKeys(t *testing.T) {
	l := NewKeyedLimiter(rate.Limit(0.001), 2)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	// A different key has its own bucket.
	assert.True(t, l.Allow("b"))
}

func TestRateLimitByKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewKeyedLimiter(rate.Limit(0.001), 1)
	r := gin.New()
	r.POST("/qr/:assetTag", RateLimitByKey(limiter, func(c *gin.Context) string {
		return c.Param("assetTag")
	}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(path string) int {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", path, nil)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("/qr/M-001"))
	assert.Equal(t, http.StatusTooManyRequests, do("/qr/M-001"))
	// Other machines are unaffected.
	assert.Equal(t, http.StatusOK, do("/qr/M-002"))
}
