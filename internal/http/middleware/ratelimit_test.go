package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

func TestKeyBySessionOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	key := KeyBySessionOrIP()
	r.GET("/sessions/:sid/rooms", func(c *gin.Context) { c.String(http.StatusOK, key(c)) })
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, key(c)) })

	cases := map[string]string{
		"/sessions/s1/rooms": "session:s1",
		"/health":            "ip:203.0.113.9",
	}
	for path, want := range cases {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = net.JoinHostPort("203.0.113.9", "4000")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Body.String() != want {
			t.Errorf("%s: key = %q; want %q", path, w.Body.String(), want)
		}
	}
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	rl := NewRateLimiter(1, 2, KeyBySessionOrIP(), clock)

	if !rl.allow("k") || !rl.allow("k") {
		t.Fatal("burst of 2 not allowed")
	}
	if rl.allow("k") {
		t.Fatal("third request allowed")
	}
	if !rl.allow("other") {
		t.Fatal("buckets are not per key")
	}
	clock.Advance(time.Second)
	if !rl.allow("k") {
		t.Fatal("token not refilled after 1s")
	}
}

func TestRateLimiter_BurstCoerced(t *testing.T) {
	rl := NewRateLimiter(1, 0, KeyBySessionOrIP(), nil)
	if rl.burst != 1 {
		t.Fatalf("burst = %d; want 1", rl.burst)
	}
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	rl := NewRateLimiter(1000, 1000, KeyBySessionOrIP(), clock)

	rl.allow("idle")
	clock.Advance(11 * time.Minute)
	for i := 0; i < sweepEvery-1; i++ {
		rl.allow("busy-" + strconv.Itoa(i%10))
	}
	if rl.Len() != 10 {
		t.Fatalf("buckets = %d; want 10 after sweep", rl.Len())
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	rl := NewRateLimiter(1, 1, KeyBySessionOrIP(), clock)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Replay") != "" {
			c.Set(ctxKeyRateBypass, true)
		}
		c.Next()
	})
	r.Use(rl.Handler())
	r.POST("/sessions/:sid/tickets", func(c *gin.Context) { c.Status(http.StatusCreated) })

	do := func(replay bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sessions/s1/tickets", nil)
		if replay {
			req.Header.Set("X-Replay", "1")
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := do(false); w.Code != http.StatusCreated {
		t.Fatalf("first = %d", w.Code)
	}
	w := do(false)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "1" {
		t.Fatalf("second = %d retry=%q", w.Code, w.Header().Get("Retry-After"))
	}
	if w := do(true); w.Code != http.StatusCreated {
		t.Fatalf("replay limited: %d", w.Code)
	}
}
