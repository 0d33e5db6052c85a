package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded header ignored", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.1:4000", "10.0.0.1"},
		{"real ip header ignored", map[string]string{"X-Real-IP": "198.51.100.2"}, "10.0.0.1:4000", "10.0.0.1"},
		{"remote addr", nil, "192.0.2.10:51234", "192.0.2.10"},
		{"remote without port", nil, "192.0.2.10", "192.0.2.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/activities", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestMemoryLimiterAllowsBurstThenBlocks(t *testing.T) {
	ml := NewMemoryLimiter(3, time.Minute)
	defer ml.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := ml.Allow(ctx, "1.1.1.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}

	ok, _ := ml.Allow(ctx, "1.1.1.1")
	assert.False(t, ok)

	// outro IP tem o próprio bucket
	ok, _ = ml.Allow(ctx, "2.2.2.2")
	assert.True(t, ok)
}

func TestMemoryLimiterEvictsIdleVisitors(t *testing.T) {
	ml := NewMemoryLimiter(1, time.Minute)
	defer ml.Close()

	ml.Allow(context.Background(), "1.1.1.1")
	ml.evict(time.Now().Add(5 * time.Minute))

	ml.mu.Lock()
	defer ml.mu.Unlock()
	assert.Empty(t, ml.visitors)
}

func TestRedisLimiter(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rl := NewRedisLimiter(db, 2, time.Minute)
	fixed := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return fixed }
	key := rl.key("9.9.9.9")
	ctx := context.Background()

	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectIncr(key).SetVal(3)

	ok, err := rl.Allow(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rl.Allow(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rl.Allow(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLimiterError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rl := NewRedisLimiter(db, 2, time.Minute)
	rl.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	mock.ExpectIncr(rl.key("9.9.9.9")).SetErr(errors.New("connection refused"))

	_, err := rl.Allow(context.Background(), "9.9.9.9")
	assert.Error(t, err)
}

// TestRateLimitIgnoresRotatedForwardedFor - trocar o X-Forwarded-For a cada request não gera chave nova
func TestRateLimitIgnoresRotatedForwardedFor(t *testing.T) {
	ml := NewMemoryLimiter(1, time.Minute)
	defer ml.Close()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := RateLimit(ml)(next)

	allowed := 0
	for i := 0; i < 50; i++ {
		r := httptest.NewRequest(http.MethodPost, "/activities", nil)
		r.RemoteAddr = "192.0.2.10:51234"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

type stubLimiter struct {
	ok  bool
	err error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) { return s.ok, s.err }

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	tests := []struct {
		name    string
		limiter Limiter
		want    int
	}{
		{"allowed", stubLimiter{ok: true}, http.StatusCreated},
		{"blocked", stubLimiter{ok: false}, http.StatusTooManyRequests},
		{"limiter down fails open", stubLimiter{err: errors.New("redis down")}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RateLimit(tt.limiter)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/activities", nil))

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusTooManyRequests {
				assert.JSONEq(t, `{"error":"Too many requests. Please try again later."}`, rec.Body.String())
			}
		})
	}
}
