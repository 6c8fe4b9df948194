package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitBuilder 按客户端 IP 限流, 超限返回 429
type RateLimitBuilder struct {
	mu         sync.Mutex
	visitors   map[string]*visitor
	limit      rate.Limit
	burst      int
	idle       time.Duration
	sweepEvery time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

func NewRateLimitBuilder(perMinute, burst int) *RateLimitBuilder {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitBuilder{
		visitors:   make(map[string]*visitor),
		limit:      rate.Limit(float64(perMinute) / 60),
		burst:      burst,
		idle:       10 * time.Minute,
		sweepEvery: time.Minute,
		now:        time.Now,
	}
}

func (b *RateLimitBuilder) allow(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	v, ok := b.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.visitors[key] = v
	}
	v.lastSeen = now
	allowed := v.limiter.AllowN(now, 1)

	if now.Sub(b.lastSweep) >= b.sweepEvery {
		b.sweep(now)
	}
	return allowed
}

// sweep 清理长时间没出现的客户端, 调用方持有锁
func (b *RateLimitBuilder) sweep(now time.Time) {
	b.lastSweep = now
	for k, v := range b.visitors {
		if now.Sub(v.lastSeen) > b.idle {
			delete(b.visitors, k)
		}
	}
}

func (b *RateLimitBuilder) Build() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodOptions {
			ctx.Next()
			return
		}
		if !b.allow(ctx.ClientIP()) {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please try again later.",
			})
			return
		}
		ctx.Next()
	}
}
