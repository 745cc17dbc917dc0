package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSimpleTokenBucketExhausts(t *testing.T) {
	l := NewSimpleTokenBucket(3, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "1.2.3.4"), "request %d within capacity", i)
	}
	assert.False(t, l.Allow(ctx, "1.2.3.4"), "capacity spent")
}

func TestSimpleTokenBucketKeysAreIndependent(t *testing.T) {
	l := NewSimpleTokenBucket(1, 1)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "1.2.3.4"))
	assert.False(t, l.Allow(ctx, "1.2.3.4"))
	assert.True(t, l.Allow(ctx, "5.6.7.8"), "other callers keep their own bucket")
}

func TestSimpleTokenBucketDefaultsCapacity(t *testing.T) {
	l := NewSimpleTokenBucket(0, 2)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "k"))
	assert.True(t, l.Allow(ctx, "k"))
	assert.False(t, l.Allow(ctx, "k"))
}

func TestRateLimitMiddlewareRejectsWith429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewSimpleTokenBucket(1, 1)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
