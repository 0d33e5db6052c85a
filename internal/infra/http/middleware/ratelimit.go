package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Limiter decide se a chave (IP) ainda pode fazer requests na janela atual.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit responde 429 quando o Limiter nega. Erro no limiter deixa passar.
func RateLimit(l Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			ok, err := l.Allow(r.Context(), ip)
			if err != nil {
				log.Warn().Err(err).Str("ip", ip).Msg("rate limiter unavailable, allowing request")
				ok = true
			}
			if !ok {
				RecordRateLimited()
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP é o RemoteAddr sem porta. Headers de proxy só contam se o router
// rodar chi RealIP antes (TRUST_PROXY), que reescreve o RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// MemoryLimiter é um token bucket por IP, bom para uma instância só.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	window   time.Duration
	stop     chan struct{}
	once     sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter permite `limit` requests por `window` com rajada de `limit`.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	ml := &MemoryLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		window:   window,
		stop:     make(chan struct{}),
	}

	go ml.cleanup(10 * time.Minute)
	return ml
}

func (ml *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	v, exists := ml.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(ml.limit, ml.burst)}
		ml.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow(), nil
}

func (ml *MemoryLimiter) Close() {
	ml.once.Do(func() { close(ml.stop) })
}

func (ml *MemoryLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ml.stop:
			return
		case <-ticker.C:
			ml.evict(time.Now())
		}
	}
}

func (ml *MemoryLimiter) evict(now time.Time) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	for ip, v := range ml.visitors {
		if now.Sub(v.lastSeen) > ml.window*2 {
			delete(ml.visitors, ip)
		}
	}
}

// RedisLimiter é uma janela fixa compartilhada entre réplicas (INCR + EXPIRE).
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: int64(limit), window: window, now: time.Now}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := rl.key(key)

	count, err := rl.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, k, rl.window).Err(); err != nil {
			return false, fmt.Errorf("redis expire: %w", err)
		}
	}
	return count <= rl.limit, nil
}

func (rl *RedisLimiter) key(ip string) string {
	bucket := rl.now().UnixNano() / int64(rl.window)
	return fmt.Sprintf("taskflow:ratelimit:%s:%d", ip, bucket)
}
