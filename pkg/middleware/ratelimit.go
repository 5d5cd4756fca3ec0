package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tribe-backend/pkg/utils"
)

// visitorTTL 访客限流器闲置多久后被清理
const visitorTTL = 5 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端 IP 的令牌桶限流
type RateLimiter struct {
	perMinute int
	burst     int

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter perMinute<=0 时不限流
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst <= 0 {
		burst = perMinute / 4
		if burst < 1 {
			burst = 1
		}
	}
	return &RateLimiter{
		perMinute: perMinute,
		burst:     burst,
		visitors:  make(map[string]*visitor),
		now:       time.Now,
	}
}

// Middleware 超出限额返回 429
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.perMinute <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		if !rl.Allow(clientID(r)) {
			w.Header().Set("Retry-After", "60")
			utils.WriteTooManyRequestsResponse(w, "Too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Allow 消耗 id 对应的一个令牌
func (rl *RateLimiter) Allow(id string) bool {
	rl.mu.Lock()
	now := rl.now()
	if now.Sub(rl.lastSweep) > time.Minute {
		rl.sweep(now)
	}
	v, ok := rl.visitors[id]
	if !ok {
		limit := rate.Limit(float64(rl.perMinute) / 60.0)
		v = &visitor{limiter: rate.NewLimiter(limit, rl.burst)}
		rl.visitors[id] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()
	return v.limiter.AllowN(now, 1)
}

// Visitors 当前跟踪的客户端数量
func (rl *RateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// caller holds rl.mu
func (rl *RateLimiter) sweep(now time.Time) {
	for id, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, id)
		}
	}
	rl.lastSweep = now
}

// clientID keys on the connection peer. Forwarding headers are client
// controlled; behind a trusted proxy RealIP rewrites RemoteAddr first.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
