package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/kbase/server/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadRate(t *testing.T) {
	_, err := New("lots", nil)
	assert.Error(t, err)
}

func TestMiddlewareLimitsPerUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l, err := New("2-M", nil)
	require.NoError(t, err)

	router := gin.New()
	router.POST("/send",
		func(c *gin.Context) {
			auth.SetUserID(c, c.GetHeader("X-Test-User"))
			c.Next()
		},
		Middleware(l),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/send", nil)
		req.Header.Set("X-Test-User", user)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("alice"))
	assert.Equal(t, http.StatusOK, send("alice"))
	assert.Equal(t, http.StatusTooManyRequests, send("alice"))

	// separate budget per user
	assert.Equal(t, http.StatusOK, send("bob"))
}
