// internal/middleware/rate_limit_test.go
package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIPBucketsThrottlePerClient(t *testing.T) {
	b := newIPBuckets(rate.Every(time.Hour), 2)

	lim := b.get("10.0.0.1")
	assert.True(t, lim.Allow())
	assert.True(t, lim.Allow())
	assert.False(t, lim.Allow(), "burst exhausted, next request must be throttled")

	// Other clients keep their own budget
	assert.True(t, b.get("10.0.0.2").Allow())
}

func TestIPBucketsReuseLimiter(t *testing.T) {
	b := newIPBuckets(rate.Every(time.Hour), 1)

	assert.Same(t, b.get("10.0.0.3"), b.get("10.0.0.3"))
	assert.Len(t, b.buckets, 1)
}
