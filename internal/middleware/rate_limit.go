// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipBuckets keeps one token bucket per client IP and prunes buckets that
// have gone quiet.
type ipBuckets struct {
	mtx     sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const bucketTTL = 3 * time.Minute

func newIPBuckets(limit rate.Limit, burst int) *ipBuckets {
	b := &ipBuckets{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
	}
	go b.prune()
	return b
}

func (b *ipBuckets) prune() {
	for {
		time.Sleep(time.Minute)
		b.mtx.Lock()
		for ip, bk := range b.buckets {
			if time.Since(bk.lastSeen) > bucketTTL {
				delete(b.buckets, ip)
			}
		}
		b.mtx.Unlock()
	}
}

func (b *ipBuckets) get(ip string) *rate.Limiter {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	bk, ok := b.buckets[ip]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.buckets[ip] = bk
	}
	bk.lastSeen = time.Now()
	return bk.limiter
}

func (b *ipBuckets) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !b.get(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, slow down",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Traffic classes for the marketplace API. Browsing listings is cheap and
// frequent; credential probes, image uploads and listing/application
// submissions are not.
var (
	browseBuckets = newIPBuckets(rate.Every(100*time.Millisecond), 20) // reads and general traffic
	authBuckets   = newIPBuckets(rate.Every(12*time.Second), 5)        // register/login attempts
	uploadBuckets = newIPBuckets(rate.Every(6*time.Second), 5)         // announcement image uploads
	submitBuckets = newIPBuckets(rate.Every(2*time.Second), 10)        // announcement/application writes
)

func GeneralRateLimit() gin.HandlerFunc {
	return browseBuckets.handler()
}

func AuthRateLimit() gin.HandlerFunc {
	return authBuckets.handler()
}

func UploadRateLimit() gin.HandlerFunc {
	return uploadBuckets.handler()
}

// SubmitRateLimit throttles announcement and application creation, which
// fan out notifications and hit the quantity ledger.
func SubmitRateLimit() gin.HandlerFunc {
	return submitBuckets.handler()
}
