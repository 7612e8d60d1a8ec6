package server

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// clientLimiter hands out one token bucket per client key and evicts
// buckets that have been idle long enough to refill completely.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	limit   rate.Limit
	burst   int
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	cl := &clientLimiter{
		clients: make(map[string]*clientBucket),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
	go cl.evictLoop()
	return cl
}

func (cl *clientLimiter) allow(key string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	b, ok := cl.clients[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

func (cl *clientLimiter) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-3 * time.Minute)
		cl.mu.Lock()
		for key, b := range cl.clients {
			if b.lastSeen.Before(cutoff) {
				delete(cl.clients, key)
			}
		}
		cl.mu.Unlock()
	}
}

// rateLimitMiddleware rejects clients over budget with 429. Buckets are
// keyed by remote IP.
func rateLimitMiddleware(cl *clientLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cl.allow(c.IP()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "too many requests, slow down",
			})
		}
		return c.Next()
	}
}
