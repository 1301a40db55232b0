package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	l := NewRateLimiter(2, time.Minute)
	now := time.Now()

	assert.True(t, l.allow("k", now))
	assert.True(t, l.allow("k", now))
	assert.False(t, l.allow("k", now))
	assert.True(t, l.allow("other", now))
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	base := time.Now()

	assert.True(t, l.allow("k", base))
	assert.False(t, l.allow("k", base.Add(30*time.Second)))
	assert.True(t, l.allow("k", base.Add(61*time.Second)))
}

func TestLimit_KeysPerAuthenticatedUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewRateLimiter(1, time.Minute)

	var userID uint
	r := gin.New()
	r.GET("/ping",
		func(c *gin.Context) { c.Set("user_id", userID) },
		l.Limit(),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	do := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		return w.Code
	}

	userID = 1
	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())

	// same source address, different account: separate budget
	userID = 2
	assert.Equal(t, http.StatusOK, do())
}
