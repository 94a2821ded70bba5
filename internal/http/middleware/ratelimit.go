package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL   = 10 * time.Minute
	limiterSweepEach = time.Minute
)

// KeyFunc extrai a chave de limitação; ok=false deixa a requisição passar sem limite.
type KeyFunc func(*http.Request) (key string, ok bool)

// RateLimiter mantém um token bucket por chave (IP ou gestor).
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter cria limitador com reqPerSec de reposição e rajada burst.
func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(reqPerSec),
		burst:   burst,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// reserve consome um token da chave e devolve quanto o cliente deve esperar (zero quando liberado).
func (r *RateLimiter) reserve(key string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[key] = b
	}
	b.lastSeen = now
	r.sweep(now)

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return time.Second
	}
	delay := res.DelayFrom(now)
	if delay > 0 {
		res.CancelAt(now)
	}
	return delay
}

func (r *RateLimiter) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < limiterSweepEach {
		return
	}
	for key, b := range r.buckets {
		if now.Sub(b.lastSeen) > limiterIdleTTL {
			delete(r.buckets, key)
		}
	}
	r.lastSweep = now
}

// Middleware aplica o limite usando a chave devolvida por keyFunc.
func (r *RateLimiter) Middleware(keyFunc KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			key, ok := keyFunc(req)
			if !ok || key == "" {
				next.ServeHTTP(w, req)
				return
			}

			if wait := r.reserve(key); wait > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "RATE_LIMIT", "limite de requisições excedido")
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}

// IPRateLimit limita rotas públicas pelo IP do cidadão.
func IPRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return limiter.Middleware(func(r *http.Request) (string, bool) {
		return realIPFromRequest(r), true
	})
}

// UserRateLimit limita rotas administrativas pelo gestor autenticado.
func UserRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return limiter.Middleware(func(r *http.Request) (string, bool) {
		subject := GetSubject(r.Context())
		return subject, subject != ""
	})
}

// realIPFromRequest prefere os cabeçalhos do proxy reverso ao RemoteAddr.
func realIPFromRequest(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
